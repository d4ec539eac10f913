// Package extract turns a PDF document into one marked text string per page.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Extractor produces page texts from a PDF.
type Extractor interface {
	// Extract returns one formatted string per page, in page order.
	Extract(ctx context.Context, r io.ReaderAt, size int64) ([]string, error)
}

// ErrEnvironment means the backend cannot run at all here, e.g. a required
// external tool is missing.
var ErrEnvironment = errors.New("pdf rendering environment unavailable")

// ErrNotPDF is returned for input that is not a PDF document.
var ErrNotPDF = errors.New("not a PDF document")

// ExtractionError wraps a failure to open or parse a document.
type ExtractionError struct {
	Backend string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: extract pdf: %v", e.Backend, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// User-facing messages for extraction failures.
const (
	MsgFailed      = "PDF 텍스트 추출 중 오류가 발생했습니다."
	MsgEnvironment = "PDF 처리 환경을 사용할 수 없습니다."
	MsgTimeout     = "PDF 텍스트 추출 시간이 초과되었습니다."
)

// UserMessage picks the message shown to the user for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEnvironment):
		return MsgEnvironment
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	default:
		return MsgFailed
	}
}

// FormatPage wraps a page's text in its start and end markers. Pages are
// numbered from 1.
func FormatPage(n int, text string) string {
	return fmt.Sprintf("--- Page %d START ---\n%s\n--- Page %d END ---", n, text, n)
}

// IsPDF sniffs the content type of data.
func IsPDF(data []byte) bool {
	return http.DetectContentType(data) == "application/pdf"
}

// New returns the backend registered under name: "native" (default) or
// "poppler".
func New(name string) (Extractor, error) {
	switch strings.ToLower(name) {
	case "", "native":
		return &Native{}, nil
	case "poppler":
		return &Poppler{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
}

// ExtractFile opens path, checks it is a PDF and extracts it with x.
func ExtractFile(ctx context.Context, x Extractor, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	head := make([]byte, 512)
	n, err := f.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if !IsPDF(head[:n]) {
		return nil, ErrNotPDF
	}

	return x.Extract(ctx, f, info.Size())
}
