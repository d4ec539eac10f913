package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Poppler extracts text by running the pdftotext tool once per document.
type Poppler struct {
	// Binary overrides the pdftotext executable name or path.
	Binary string
}

func (p *Poppler) binary() string {
	if p.Binary == "" {
		return "pdftotext"
	}
	return p.Binary
}

func (p *Poppler) Extract(ctx context.Context, r io.ReaderAt, size int64) ([]string, error) {
	bin, err := exec.LookPath(p.binary())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvironment, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-enc", "UTF-8", "-", "-")
	cmd.Stdin = io.NewSectionReader(r, 0, size)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, &ExtractionError{Backend: "poppler", Err: fmt.Errorf("%v: %s", err, msg)}
	}

	return splitPages(stdout.String()), nil
}

// splitPages splits pdftotext output on form feeds. pdftotext ends every
// page, including the last, with a form feed.
func splitPages(out string) []string {
	if out == "" {
		return []string{}
	}
	raw := strings.Split(out, "\f")
	if strings.HasSuffix(out, "\f") {
		raw = raw[:len(raw)-1]
	}
	pages := make([]string, len(raw))
	for i, text := range raw {
		pages[i] = FormatPage(i+1, strings.TrimRight(text, "\n"))
	}
	return pages
}
