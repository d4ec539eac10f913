package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// Native extracts text in-process with github.com/ledongthuc/pdf.
type Native struct {
	// Log receives per-page decode warnings. Nil uses the standard logger.
	Log logrus.FieldLogger
}

func (n *Native) logger() logrus.FieldLogger {
	if n.Log == nil {
		return logrus.StandardLogger()
	}
	return n.Log
}

func (n *Native) Extract(ctx context.Context, r io.ReaderAt, size int64) (pages []string, err error) {
	// The parser panics on some malformed trailers.
	defer func() {
		if p := recover(); p != nil {
			pages, err = nil, &ExtractionError{Backend: "native", Err: fmt.Errorf("parser panic: %v", p)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, &ExtractionError{Backend: "native", Err: err}
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, perr := n.pageText(reader, i)
		if perr != nil {
			n.logger().WithFields(logrus.Fields{"page": i}).WithError(perr).Warn("page text unreadable, using empty text")
			text = ""
		}
		pages = append(pages, FormatPage(i, text))
	}
	return pages, nil
}

// pageText joins the page's text rows with newlines. A null page object
// yields empty text.
func (n *Native) pageText(reader *pdf.Reader, i int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decode page %d: %v", i, p)
		}
	}()

	page := reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for _, run := range row.Content {
			b.WriteString(run.S)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n"), nil
}
