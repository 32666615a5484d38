package iep

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageExtractor turns a PDF on disk into per-page text. The plain
// extractor reads the embedded text layer; scanned packets fall back
// to OCR.
type PageExtractor interface {
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// TextLayerExtractor reads the text layer of a digitally-produced PDF.
type TextLayerExtractor struct{}

func (TextLayerExtractor) ExtractPages(_ context.Context, path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		var buf bytes.Buffer
		texts := page.Content().Text
		for _, t := range texts {
			buf.WriteString(t.S)
			buf.WriteString(" ")
		}
		pages = append(pages, buf.String())
	}
	return pages, nil
}

// mostlyEmpty reports whether the extracted text layer is too thin to
// trust, which usually means the packet was scanned.
func mostlyEmpty(pages []string) bool {
	if len(pages) == 0 {
		return true
	}
	blank := 0
	for _, p := range pages {
		if len(strings.TrimSpace(p)) < 20 {
			blank++
		}
	}
	return blank*2 > len(pages)
}
