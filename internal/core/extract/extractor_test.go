package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"
)

func newTestExtractor(maxBytes int) *Extractor {
	return New(gocache.New(5*time.Minute, 0), maxBytes, 50, 5*time.Second)
}

// pdfDocument builds a minimal PDF with one text-bearing content stream per
// page, so page-level behavior can be tested without binary fixtures.
func pdfDocument(pages []string) []byte {
	total := 3 + 2*len(pages)
	bodies := make(map[int]string, total)

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	bodies[1] = "<< /Type /Catalog /Pages 2 0 R >>"
	bodies[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	bodies[3] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		bodies[4+2*i] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i)
		bodies[5+2*i] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, total+1)
	for n := 1; n <= total; n++ {
		offsets[n] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", n, bodies[n])
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", total+1)
	b.WriteString("0000000000 65535 f \n")
	for n := 1; n <= total; n++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return []byte(b.String())
}

func TestExtractRejectsOversizedPayload(t *testing.T) {
	e := newTestExtractor(16)

	_, err := e.Extract(context.Background(), []byte(strings.Repeat("a", 17)))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestExtractPlainText(t *testing.T) {
	e := newTestExtractor(1 << 20)
	content := "员工入职培训手册\nWelcome aboard"

	doc, err := e.Extract(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", doc.PageCount)
	}
	if doc.Text != content {
		t.Errorf("Text = %q, want %q", doc.Text, content)
	}
	if want := utf8.RuneCountInString(content); doc.CharacterCount != want {
		t.Errorf("CharacterCount = %d, want %d", doc.CharacterCount, want)
	}
	if doc.ServedFromCache {
		t.Error("first extraction should not be served from cache")
	}
}

func TestExtractSecondCallHitsCache(t *testing.T) {
	e := newTestExtractor(1 << 20)
	data := []byte("cacheable body of text")

	first, err := e.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, err := e.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if !second.ServedFromCache {
		t.Error("second extraction should be served from cache")
	}
	if second.Text != first.Text || second.PageCount != first.PageCount {
		t.Error("cached result should match the original extraction")
	}
	if first.ServedFromCache {
		t.Error("cache hit must not mutate the stored document")
	}
}

func TestExtractExpiredEntryIsReparsed(t *testing.T) {
	e := New(gocache.New(10*time.Millisecond, 0), 1<<20, 50, 5*time.Second)
	data := []byte("short lived entry")

	if _, err := e.Extract(context.Background(), data); err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	doc, err := e.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if doc.ServedFromCache {
		t.Error("expired entry must not be served from cache")
	}
}

func TestExtractPDFPages(t *testing.T) {
	e := newTestExtractor(1 << 20)
	doc := pdfDocument([]string{"First page body text", "Second page body text"})

	out, err := e.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", out.PageCount)
	}
	if !strings.Contains(out.Text, "First page body text") || !strings.Contains(out.Text, "Second page body text") {
		t.Errorf("page text missing: %q", out.Text)
	}
}

func TestExtractPDFPageCeiling(t *testing.T) {
	e := New(gocache.New(5*time.Minute, 0), 1<<20, 1, 5*time.Second)
	doc := pdfDocument([]string{"First page body text", "Second page body text"})

	out, err := e.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", out.PageCount)
	}
	if !strings.Contains(out.Text, "First page body text") {
		t.Errorf("first page missing: %q", out.Text)
	}
	if strings.Contains(out.Text, "Second page body text") {
		t.Errorf("pages beyond the ceiling must be omitted: %q", out.Text)
	}
}

func TestExtractTimeout(t *testing.T) {
	e := New(gocache.New(5*time.Minute, 0), 1<<20, 50, time.Nanosecond)

	_, err := e.Extract(context.Background(), []byte("plenty of text to parse"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExtractExpiredContext(t *testing.T) {
	e := newTestExtractor(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, []byte("document text"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExtractMalformedPDF(t *testing.T) {
	e := newTestExtractor(1 << 20)

	_, err := e.Extract(context.Background(), []byte("%PDF-1.7 but nothing else here"))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractBlankContent(t *testing.T) {
	e := newTestExtractor(1 << 20)

	_, err := e.Extract(context.Background(), []byte("   \n\t  "))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestFingerprintDistinguishesLengths(t *testing.T) {
	base := strings.Repeat("x", 200)
	a := fingerprint([]byte(base))
	b := fingerprint([]byte(base + "y"))
	if a == b {
		t.Error("documents sharing a prefix but differing in length must not collide")
	}
	if a != fingerprint([]byte(base)) {
		t.Error("fingerprint must be deterministic")
	}
}

func TestSanitizeUTF8Printable(t *testing.T) {
	in := "\uFEFFhello\x00 world \tok\n"
	got := sanitizeUTF8Printable(in)
	if strings.ContainsRune(got, '\uFEFF') || strings.ContainsRune(got, 0) {
		t.Errorf("sanitized output still contains control bytes: %q", got)
	}
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("printable content dropped: %q", got)
	}
}
