package status

import "testing"

func TestErrorCodeString(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{InvalidRequestBody, "TC-0"},
		{MissingParams, "TC-1"},
		{ParseInternal, "TC-1000"},
		{ParsePayloadTooLarge, "TC-1001"},
		{ParseExtractionFailed, "TC-1002"},
		{ParseTimeout, "TC-1003"},
		{GenerationFailed, "TC-2000"},
		{GenEmptyResponse, "TC-2001"},
		{GenMalformedOutput, "TC-2002"},
		{ErrorCodeInternal, "TC-9000"},
	}
	for _, c := range cases {
		if got := c.code.String(); got != c.want {
			t.Errorf("%d.String() = %s, want %s", int(c.code), got, c.want)
		}
	}
}
