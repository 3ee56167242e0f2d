// Package extract turns uploaded CV documents into plain text.
//
// The strategy is chosen from the declared media type only; content is never
// sniffed. Unknown types fall back to reading the bytes as UTF-8, so extraction
// only fails for formats whose parser rejected the document.
package extract

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

const (
	MimePDF     = "application/pdf"
	MimeJSON    = "application/json"
	MimeMSWord  = "application/msword"
	MimeDOCX    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText    = "text/plain"
	docxSuffix  = ".docx"
	textPrefix  = "text/"
	formatPDF   = "pdf"
	formatDOCX  = "docx"
	unknownName = "unknown"
)

// Strategy identifies the decoder used for a media type.
type Strategy int

const (
	StrategyFallback Strategy = iota
	StrategyText
	StrategyPDF
	StrategyDOCX
)

func (s Strategy) String() string {
	switch s {
	case StrategyText:
		return "text"
	case StrategyPDF:
		return formatPDF
	case StrategyDOCX:
		return formatDOCX
	case StrategyFallback:
		return "fallback"
	default:
		return unknownName
	}
}

// RawDocument is an uploaded file after payload decoding.
type RawDocument struct {
	Bytes     []byte
	MediaType string
}

// ExtractionFailed wraps a format parser error.
type ExtractionFailed struct {
	Format string
	Cause  error
}

func (e *ExtractionFailed) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", strings.ToUpper(e.Format), e.Cause)
}

func (e *ExtractionFailed) Unwrap() error { return e.Cause }

// Classify maps a media type to its extraction strategy. Order matters: the
// first matching rule wins.
func Classify(mediaType string) Strategy {
	mt := normalize(mediaType)
	switch {
	case strings.HasPrefix(mt, textPrefix) || mt == MimeJSON:
		return StrategyText
	case mt == MimePDF:
		return StrategyPDF
	case mt == MimeDOCX || mt == MimeMSWord || strings.HasSuffix(mt, docxSuffix):
		return StrategyDOCX
	default:
		return StrategyFallback
	}
}

// MediaTypeFromName guesses a media type from a file name's extension. Unknown
// extensions give "", which Classify treats as the fallback strategy.
func MediaTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".doc":
		return MimeMSWord
	case ".json":
		return MimeJSON
	case ".txt", ".md":
		return MimeText
	default:
		return ""
	}
}

// Extract returns the plain text of doc. Only the PDF and DOCX strategies can
// fail, and they always fail with *ExtractionFailed.
func Extract(ctx context.Context, doc RawDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch Classify(doc.MediaType) {
	case StrategyPDF:
		text, err := extractPDFText(doc.Bytes)
		if err != nil {
			return "", &ExtractionFailed{Format: formatPDF, Cause: err}
		}
		return text, nil
	case StrategyDOCX:
		text, err := extractDocxText(doc.Bytes)
		if err != nil {
			return "", &ExtractionFailed{Format: formatDOCX, Cause: err}
		}
		return text, nil
	default:
		// text and fallback: bytes are taken as UTF-8, garbled or not
		return string(doc.Bytes), nil
	}
}

func normalize(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if mt == "" {
		return mt
	}
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	if base, _, ok := strings.Cut(mt, ";"); ok {
		return strings.TrimSpace(base)
	}
	return mt
}
