package api

import "github.com/pdfquiz/pdfquiz/internal/quizgen"

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Texts []string `json:"texts"`
}

// GenerateResponse is the success body of POST /api/generate.
type GenerateResponse struct {
	Result quizgen.QuestionSet `json:"result"`
	Usage  quizgen.Usage       `json:"usage"`
}

// ExtractResponse is the success body of POST /api/extract.
type ExtractResponse struct {
	Pages []string `json:"pages"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Messages for failures that happen before generation starts.
const (
	MsgBadBody     = "요청 본문이 올바른 JSON 형식이 아닙니다."
	MsgTooLarge    = "요청 본문이 너무 큽니다."
	MsgMissingFile = "PDF 파일이 누락되었습니다."
	MsgNotPDF      = "PDF 파일만 업로드할 수 있습니다."
)
