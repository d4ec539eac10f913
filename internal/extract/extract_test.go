package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

// buildPDF writes a minimal PDF with one line of Helvetica text per page.
func buildPDF(pageTexts []string) []byte {
	n := len(pageTexts)
	fontID := 3 + 2*n
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, n)
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))

	for i, text := range pageTexts {
		stream := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontID, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestFormatPage(t *testing.T) {
	got := FormatPage(3, "본문")
	want := "--- Page 3 START ---\n본문\n--- Page 3 END ---"
	if got != want {
		t.Errorf("FormatPage = %q, want %q", got, want)
	}
	if got := FormatPage(1, ""); got != "--- Page 1 START ---\n\n--- Page 1 END ---" {
		t.Errorf("empty page = %q", got)
	}
}

func TestIsPDF(t *testing.T) {
	if !IsPDF(buildPDF([]string{"x"})) {
		t.Error("expected generated document to be detected as PDF")
	}
	if IsPDF([]byte("hello, world")) {
		t.Error("plain text detected as PDF")
	}
	if IsPDF(nil) {
		t.Error("empty input detected as PDF")
	}
}

func TestNative_PageCountAndOrder(t *testing.T) {
	texts := []string{"Hello page one", "Second page here", "Third and last"}
	data := buildPDF(texts)
	log, _ := test.NewNullLogger()

	pages, err := (&Native{Log: log}).Extract(context.Background(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(pages) != len(texts) {
		t.Fatalf("expected %d pages, got %d", len(texts), len(pages))
	}
	for i, page := range pages {
		n := i + 1
		if !strings.HasPrefix(page, fmt.Sprintf("--- Page %d START ---\n", n)) {
			t.Errorf("page %d: missing start marker: %q", n, page)
		}
		if !strings.HasSuffix(page, fmt.Sprintf("\n--- Page %d END ---", n)) {
			t.Errorf("page %d: missing end marker: %q", n, page)
		}
		if !strings.Contains(page, texts[i]) {
			t.Errorf("page %d: expected text %q in %q", n, texts[i], page)
		}
	}
}

func TestNative_Corrupt(t *testing.T) {
	data := []byte("%PDF-1.4\nthis is not really a pdf")
	_, err := (&Native{}).Extract(context.Background(), bytes.NewReader(data), int64(len(data)))
	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("expected *ExtractionError, got %T: %v", err, err)
	}
}

func TestNative_Canceled(t *testing.T) {
	data := buildPDF([]string{"a", "b"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Native{}).Extract(ctx, bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPoppler_MissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	data := buildPDF([]string{"a"})

	_, err := (&Poppler{}).Extract(context.Background(), bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrEnvironment) {
		t.Fatalf("expected ErrEnvironment, got %v", err)
	}
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"one blank page", "\f", []string{FormatPage(1, "")}},
		{"two pages", "first\n\fsecond\n\f", []string{FormatPage(1, "first"), FormatPage(2, "second")}},
		{"no trailing feed", "only", []string{FormatPage(1, "only")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPages(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d pages, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("page %d = %q, want %q", i+1, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(pdfPath, buildPDF([]string{"one", "two"}), 0o644); err != nil {
		t.Fatal(err)
	}
	pages, err := ExtractFile(context.Background(), &Native{}, pdfPath)
	if err != nil {
		t.Fatalf("extract file: %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("expected 2 pages, got %d", len(pages))
	}

	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("plain notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractFile(context.Background(), &Native{}, txtPath); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "native", "Poppler"} {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New("ocr"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
