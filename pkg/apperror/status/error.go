package status

import "fmt"

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// String renders the wire form clients match on.
func (c ErrorCode) String() string {
	return fmt.Sprintf("TC-%d", int(c))
}

// Reserved ranges by domain:
//   0-999:     client/validation errors
//   1000-1999: document parsing
//   2000-2999: generation

const (
	BadRequestBase ErrorCode = 0
	ParseErrorBase ErrorCode = 1000
	GenErrorBase   ErrorCode = 2000
)

// Client/validation errors start at 0
const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
)

// Document parsing errors start at 1000
const (
	ParseInternal         ErrorCode = ParseErrorBase + iota // 1000
	ParsePayloadTooLarge                                    // 1001
	ParseExtractionFailed                                   // 1002
	ParseTimeout                                            // 1003
)

// Generation errors start at 2000
const (
	GenerationFailed ErrorCode = GenErrorBase + iota // 2000
	GenEmptyResponse                                 // 2001
	GenMalformedOutput                               // 2002
)

const (
	ErrorCodeInternal ErrorCode = 9000
)
