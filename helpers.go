package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/muhammadolammi/musecareer/internal/analysis"
	"github.com/muhammadolammi/musecareer/internal/extract"
	"github.com/muhammadolammi/musecareer/internal/llm"
	"github.com/muhammadolammi/musecareer/internal/payload"
)

// FileFetcher resolves fileData URIs to document bytes.
type FileFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

var (
	errNoFileStore       = errors.New("fileData parts need object storage (R2_*) to be configured")
	errUnsupportedFormat = errors.New("unsupported file format, please upload PDF, DOCX or TXT")
)

// uploadMediaType accepts the file types the upload routes have always taken.
func uploadMediaType(filename string) (string, bool) {
	mediaType := extract.MediaTypeFromName(filename)
	switch mediaType {
	case extract.MimePDF, extract.MimeDOCX, extract.MimeText:
		return mediaType, true
	default:
		return "", false
	}
}

// interestsFrom joins every text part with a blank line.
func interestsFrom(parts []Part) string {
	var texts []string
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// mediaTypeFor prefers the declared mimeType and falls back to the type in a
// data URL envelope.
func mediaTypeFor(declared, data string) string {
	if declared != "" {
		return declared
	}
	mt, _ := payload.Split(data)
	return mt
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code})
}

// respondAnalysisError maps pipeline failures to status codes.
func respondAnalysisError(c *gin.Context, err error) {
	var (
		decodeErr    *payload.DecodeError
		extractErr   *extract.ExtractionFailed
		upstreamErr  *llm.UpstreamError
		malformedErr *analysis.MalformedModelOutput
	)
	switch {
	case errors.As(err, &decodeErr):
		respondError(c, http.StatusBadRequest, "decode_failed", err)
	case errors.As(err, &extractErr):
		respondError(c, http.StatusInternalServerError, "extraction_failed",
			fmt.Errorf("failed to parse uploaded file: %w", err))
	case errors.As(err, &malformedErr):
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorResponse{
			Error:   "LLM returned non-JSON or unparsable JSON.",
			Code:    "malformed_model_output",
			LLMText: malformedErr.RawText,
		})
	case errors.As(err, &upstreamErr):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:          upstreamErr.Error(),
			Code:           "upstream_error",
			UpstreamStatus: upstreamErr.Status,
		})
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
