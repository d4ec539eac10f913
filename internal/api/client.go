package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pdfquiz/pdfquiz/internal/extract"
	"github.com/pdfquiz/pdfquiz/internal/quizgen"
)

// Client talks to a running pdfquiz server. It implements both
// quizgen.Generator and extract.Extractor so the terminal client can run
// against a remote server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient uses
// http.DefaultClient; request deadlines come from the context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Generate calls POST /api/generate. Failures come back as
// *quizgen.GenerationError carrying the server's message.
func (c *Client) Generate(ctx context.Context, texts []string) (*quizgen.Result, error) {
	body, err := json.Marshal(GenerateRequest{Texts: texts})
	if err != nil {
		return nil, &quizgen.GenerationError{Kind: quizgen.ValidationError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &quizgen.GenerationError{Kind: quizgen.UpstreamFailure, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &quizgen.GenerationError{Kind: quizgen.UpstreamFailure, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readError(resp)
		return nil, &quizgen.GenerationError{Kind: kindForStatus(resp.StatusCode, msg), Err: fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)}
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &quizgen.GenerationError{Kind: quizgen.InvalidModelOutput, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &quizgen.Result{Set: out.Result, Usage: out.Usage}, nil
}

// Extract uploads the document to POST /api/extract.
func (c *Client) Extract(ctx context.Context, r io.ReaderAt, size int64) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "document.pdf")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, io.NewSectionReader(r, 0, size)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/extract", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", extract.ErrEnvironment, readError(resp))
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", extract.ErrNotPDF, readError(resp))
	default:
		return nil, &extract.ExtractionError{Backend: "remote", Err: fmt.Errorf("server returned %d: %s", resp.StatusCode, readError(resp))}
	}

	var out ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &extract.ExtractionError{Backend: "remote", Err: err}
	}
	return out.Pages, nil
}

// Health calls GET /healthz.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	var out HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func readError(resp *http.Response) string {
	var e ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(data))
}

func kindForStatus(status int, msg string) quizgen.ErrorKind {
	switch {
	case status == http.StatusBadRequest:
		return quizgen.ValidationError
	case msg == quizgen.MsgInvalidOutput:
		return quizgen.InvalidModelOutput
	default:
		return quizgen.UpstreamFailure
	}
}
