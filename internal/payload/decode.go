package payload

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeError is returned when the data after the envelope prefix is not
// base64 in any of the accepted alphabets.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid base64 payload: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Split separates a `data:<mime>;base64,<data>` envelope into the media type it
// declares and the encoded data. Strings without a comma are all data.
func Split(envelope string) (mediaType, data string) {
	comma := strings.IndexByte(envelope, ',')
	if comma == -1 {
		return "", envelope
	}
	prefix := envelope[:comma]
	data = envelope[comma+1:]
	if rest, ok := strings.CutPrefix(prefix, "data:"); ok {
		mediaType, _, _ = strings.Cut(rest, ";")
	}
	return strings.TrimSpace(mediaType), data
}

// Decode strips everything up to and including the first comma and decodes the
// remainder. Standard padded base64 is tried first, then unpadded and URL-safe
// variants. An input none of them accept yields a *DecodeError.
func Decode(envelope string) ([]byte, error) {
	_, data := Split(envelope)
	data = stripSpace(data)
	if data == "" {
		return []byte{}, nil
	}

	var firstErr error
	for _, enc := range encodings {
		out, err := enc.DecodeString(data)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, &DecodeError{Cause: firstErr}
}

// MIME-wrapped base64 carries line breaks every 76 chars.
func stripSpace(s string) string {
	if !strings.ContainsAny(s, " \t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
