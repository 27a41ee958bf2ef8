package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	logx "github.com/ai-rag-weather/server/pkg/logger"
)

// Page is the text of one PDF page, 1-based.
type Page struct {
	Number int
	Text   string
}

// ReadPages extracts plain text from every page of a PDF file. Pages
// that fail extraction or come back empty are skipped so a partially
// damaged document still ingests.
func ReadPages(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", path)
	}

	var pages []Page
	for n := 1; n <= numPages; n++ {
		p := reader.Page(n)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			logx.Warn().Err(err).Int("page", n).Msg("skipping page, text extraction failed")
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: n, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no text content found in %s", path)
	}
	return pages, nil
}
