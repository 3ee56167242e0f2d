package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhammadolammi/musecareer/internal/analysis"
	"github.com/muhammadolammi/musecareer/internal/extract"
	"github.com/muhammadolammi/musecareer/internal/objectstore"
)

func (cfg *ServerConfig) handlerHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (cfg *ServerConfig) handlerRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "MuseCareer CV analysis API",
		"model":   cfg.Config.LLM.Model,
		"endpoints": gin.H{
			"/health":            "Health check",
			"/analyze":           "POST - Analyze a CV sent as inlineData or fileData",
			"/analyze-cv":        "POST - Analyze an uploaded CV file (multipart field \"file\")",
			"/analyze-cv-base64": "POST - Analyze a CV sent as {file:{name,data}}",
		},
	})
}

func (cfg *ServerConfig) handlerAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", err)
			return
		}
		respondError(c, http.StatusBadRequest, "invalid_payload", fmt.Errorf("invalid payload: %w", err))
		return
	}
	if len(req.Contents) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_payload", errors.New("invalid payload: contents required"))
		return
	}

	parts := req.Contents[0].Parts
	interests := interestsFrom(parts)
	requestID := c.GetString(ctxKeyRequestID)
	// the model call runs to completion even if the client goes away
	ctx := context.WithoutCancel(c.Request.Context())

	var (
		inline *InlineData
		file   *FileData
	)
	for i := range parts {
		if inline == nil && parts[i].InlineData != nil {
			inline = parts[i].InlineData
		}
		if file == nil && parts[i].FileData != nil {
			file = parts[i].FileData
		}
	}

	var (
		result *analysis.Result
		err    error
	)
	switch {
	case inline != nil:
		if inline.Data == "" {
			respondError(c, http.StatusBadRequest, "missing_data", errors.New("inlineData.data missing"))
			return
		}
		result, err = cfg.Analyzer.AnalyzeEncoded(ctx, requestID, &analysis.EncodedPayload{
			MediaType: mediaTypeFor(inline.MimeType, inline.Data),
			Data:      inline.Data,
		}, interests)
	case file != nil:
		doc, ferr := cfg.fetchFile(ctx, file)
		if ferr != nil {
			status, code := http.StatusBadGateway, "file_fetch_failed"
			if errors.Is(ferr, errNoFileStore) || errors.Is(ferr, objectstore.ErrInvalidURI) {
				status, code = http.StatusBadRequest, "file_source_unavailable"
			}
			cfg.Log.Warn("file fetch failed", "request_id", requestID, "uri", file.FileURI, "error", ferr)
			cfg.Analyzer.ReportFailure(ctx, requestID, ferr)
			respondError(c, status, code, ferr)
			return
		}
		result, err = cfg.Analyzer.Analyze(ctx, requestID, doc, interests)
	default:
		result, err = cfg.Analyzer.Analyze(ctx, requestID, nil, interests)
	}
	if err != nil {
		cfg.Log.Error("analysis failed", "request_id", requestID, "error", err)
		respondAnalysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handlerAnalyzeUpload accepts a multipart "file" field; the media type comes
// from the file name.
func (cfg *ServerConfig) handlerAnalyzeUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", err)
			return
		}
		respondError(c, http.StatusBadRequest, "missing_file", fmt.Errorf("no file provided: %w", err))
		return
	}
	mediaType, ok := uploadMediaType(fh.Filename)
	if !ok {
		respondError(c, http.StatusBadRequest, "unsupported_format", errUnsupportedFormat)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing_file", fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing_file", fmt.Errorf("failed to read upload: %w", err))
		return
	}

	requestID := c.GetString(ctxKeyRequestID)
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := cfg.Analyzer.Analyze(ctx, requestID, &extract.RawDocument{Bytes: data, MediaType: mediaType}, c.PostForm("interests"))
	if err != nil {
		cfg.Log.Error("analysis failed", "request_id", requestID, "filename", fh.Filename, "error", err)
		respondAnalysisError(c, err)
		return
	}
	cfg.respondFileAnalysis(c, fh.Filename, result)
}

// handlerAnalyzeBase64 accepts {"file":{"name","data"}} as sent by form
// builders that cannot do multipart.
func (cfg *ServerConfig) handlerAnalyzeBase64(c *gin.Context) {
	var req FileUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", err)
			return
		}
		respondError(c, http.StatusBadRequest, "invalid_payload", fmt.Errorf("invalid payload: %w", err))
		return
	}
	if req.File == nil || req.File.Data == "" {
		respondError(c, http.StatusBadRequest, "missing_data", errors.New("no file data provided"))
		return
	}
	name := req.File.Name
	if name == "" {
		name = "document"
	}
	mediaType, ok := uploadMediaType(name)
	if !ok {
		respondError(c, http.StatusBadRequest, "unsupported_format", errUnsupportedFormat)
		return
	}

	requestID := c.GetString(ctxKeyRequestID)
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := cfg.Analyzer.AnalyzeEncoded(ctx, requestID, &analysis.EncodedPayload{
		MediaType: mediaType,
		Data:      req.File.Data,
	}, req.Interests)
	if err != nil {
		cfg.Log.Error("analysis failed", "request_id", requestID, "filename", name, "error", err)
		respondAnalysisError(c, err)
		return
	}
	cfg.respondFileAnalysis(c, name, result)
}

func (cfg *ServerConfig) respondFileAnalysis(c *gin.Context, filename string, result *analysis.Result) {
	c.JSON(http.StatusOK, FileAnalysisResponse{
		Success:  true,
		Filename: filename,
		Analysis: result,
		Model:    cfg.Config.LLM.Model,
	})
}

func (cfg *ServerConfig) fetchFile(ctx context.Context, file *FileData) (*extract.RawDocument, error) {
	if cfg.Files == nil {
		return nil, errNoFileStore
	}
	if file.FileURI == "" {
		return nil, fmt.Errorf("%w: fileData.fileUri missing", objectstore.ErrInvalidURI)
	}
	data, err := cfg.Files.Fetch(ctx, file.FileURI)
	if err != nil {
		return nil, err
	}
	return &extract.RawDocument{Bytes: data, MediaType: file.MimeType}, nil
}
