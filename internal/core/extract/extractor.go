package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"training-copilot/pkg/logger"

	"github.com/ledongthuc/pdf"
	gocache "github.com/patrickmn/go-cache"
)

var (
	// ErrPayloadTooLarge is returned before any decode is attempted.
	ErrPayloadTooLarge = errors.New("document exceeds the size limit")
	// ErrExtractionFailed covers corrupt binaries and documents without a
	// text layer (scanned/image-only PDFs).
	ErrExtractionFailed = errors.New("document extraction failed")
	// ErrTimeout means extraction exceeded the per-call time budget.
	// Not retryable within the same invocation.
	ErrTimeout = errors.New("document extraction timed out")
)

// Document is the result of one extraction.
type Document struct {
	Text            string `json:"text"`
	PageCount       int    `json:"pages"`
	CharacterCount  int    `json:"characters"`
	DurationMs      int64  `json:"parse_time_ms"`
	ServedFromCache bool   `json:"cached"`
}

// Extractor turns raw PDF or plain-text bytes into a Document. Results are
// memoized in the injected cache so repeat uploads of the same file within
// the TTL skip extraction entirely; the hosting environment caps each call
// at a few seconds of wall clock, so re-paying extraction cost is not an
// option for retried requests.
type Extractor struct {
	cache    *gocache.Cache
	maxBytes int
	maxPages int
	timeout  time.Duration
}

func New(cache *gocache.Cache, maxBytes, maxPages int, timeout time.Duration) *Extractor {
	return &Extractor{
		cache:    cache,
		maxBytes: maxBytes,
		maxPages: maxPages,
		timeout:  timeout,
	}
}

// Extract parses the document and returns its text together with page and
// character counts. The size ceiling is enforced before decoding.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*Document, error) {
	start := time.Now()

	if len(data) > e.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(data), e.maxBytes)
	}

	key := fingerprint(data)
	if hit, ok := e.cache.Get(key); ok {
		if doc, ok := hit.(Document); ok {
			out := doc
			out.ServedFromCache = true
			out.DurationMs = time.Since(start).Milliseconds()
			logger.WithFields(map[string]interface{}{
				"pages":      out.PageCount,
				"characters": out.CharacterCount,
			}).Info("extract: cache hit")
			return &out, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	type result struct {
		pages []string
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		pages, err := extractPages(data, e.maxPages)
		ch <- result{pages: pages, err: err}
	}()

	var pages []string
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		pages = r.pages
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text layer found, the document may be scanned images", ErrExtractionFailed)
	}

	doc := Document{
		Text:           text,
		PageCount:      len(pages),
		CharacterCount: utf8.RuneCountInString(text),
		DurationMs:     time.Since(start).Milliseconds(),
	}

	e.cache.Set(key, doc, gocache.DefaultExpiration)
	// Opportunistic sweep; expiry is otherwise only checked on read.
	e.cache.DeleteExpired()

	logger.WithFields(map[string]interface{}{
		"pages":      doc.PageCount,
		"characters": doc.CharacterCount,
		"elapsed_ms": doc.DurationMs,
	}).Info("extract: done")

	return &doc, nil
}

// fingerprint derives a cheap cache key from a deterministic prefix of the
// input plus its length. Collisions only risk a stale hit within the TTL.
func fingerprint(data []byte) string {
	n := 128
	if len(data) < n {
		n = len(data)
	}
	return fmt.Sprintf("%x:%d", data[:n], len(data))
}

// extractPages returns per-page text. Bytes without a PDF header are treated
// as sanitized UTF-8 plain text forming a single page.
func extractPages(data []byte, maxPages int) ([]string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		content := sanitizeUTF8Printable(string(data))
		if content == "" {
			return nil, fmt.Errorf("%w: empty content", ErrExtractionFailed)
		}
		return []string{content}, nil
	}
	return extractPDFPages(data, maxPages)
}

func extractPDFPages(data []byte, maxPages int) (pages []string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrExtractionFailed, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	total := r.NumPage()
	if maxPages > 0 && total > maxPages {
		// Pages beyond the ceiling are silently omitted to bound latency.
		total = maxPages
	}

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, perr := p.GetPlainText(nil)
		if perr != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		pages = append(pages, sanitizeUTF8Printable(txt))
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no readable pages", ErrExtractionFailed)
	}
	return pages, nil
}

// sanitizeUTF8Printable removes BOM and non-printable runes, keeping common whitespace.
func sanitizeUTF8Printable(s string) string {
	if !utf8.ValidString(s) {
		s = string([]rune(s))
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\uFEFF' { // BOM
			continue
		}
		if r == unicode.ReplacementChar { // U+FFFD
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' {
			// keep
		} else if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
