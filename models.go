package main

import (
	"github.com/muhammadolammi/musecareer/internal/analysis"
	"github.com/muhammadolammi/musecareer/internal/config"
	"github.com/muhammadolammi/musecareer/internal/logger"
)

// ServerConfig holds everything the handlers need. It is built once in main.
type ServerConfig struct {
	Config   config.Config
	Analyzer *analysis.Analyzer
	Files    FileFetcher
	Log      *logger.Logger
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type FileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
	FileData   *FileData   `json:"fileData,omitempty"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type AnalyzeRequest struct {
	Contents []Content `json:"contents"`
}

type NamedFile struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type FileUploadRequest struct {
	File      *NamedFile `json:"file"`
	Interests string     `json:"interests,omitempty"`
}

// FileAnalysisResponse wraps the result for the file upload routes.
type FileAnalysisResponse struct {
	Success  bool             `json:"success"`
	Filename string           `json:"filename"`
	Analysis *analysis.Result `json:"analysis"`
	Model    string           `json:"model"`
}

type ErrorResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code"`
	LLMText        string `json:"llm_text,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}
