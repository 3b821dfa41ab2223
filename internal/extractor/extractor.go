// Package extractor turns raw PDF bytes into normalized text and metadata.
//
// Extraction first reads the text layer page by page. When no page yields
// any text (scanned image PDFs) it falls back to rendering each page and
// running OCR. Password-protected documents are probed with an empty
// password and otherwise rejected with a dedicated error kind.
package extractor

import (
	"strings"

	"pdf-chat-go/internal/apperr"
	"pdf-chat-go/pkg/log"
)

// PageBreak separates the text of consecutive pages in extracted output.
const PageBreak = "\f"

// Result is the extraction output for one document.
type Result struct {
	Text     string
	Metadata Metadata
}

// Extractor extracts text and metadata from PDF byte streams.
type Extractor struct {
	parser     Parser
	renderer   PageRenderer
	recognizer Recognizer
}

// New creates an Extractor from its collaborators.
func New(parser Parser, renderer PageRenderer, recognizer Recognizer) *Extractor {
	return &Extractor{parser: parser, renderer: renderer, recognizer: recognizer}
}

// Extract parses the document, extracts and normalizes the per-page text
// layer, and falls back to OCR when no page has one. Page texts are joined
// with PageBreak markers; pages without text contribute nothing, not a
// placeholder.
func (e *Extractor) Extract(data []byte) (Result, error) {
	doc, err := e.parser.Parse(data)
	if err != nil {
		return Result{}, err
	}

	pages := make([]string, 0, doc.NumPages())
	for n := 1; n <= doc.NumPages(); n++ {
		raw, err := doc.PageText(n)
		if err != nil {
			return Result{}, apperr.Wrap(apperr.KindProcessingFailure,
				"failed to extract page text", err)
		}
		if normalized := Normalize(raw); normalized != "" {
			pages = append(pages, normalized)
		}
	}

	text := strings.Join(pages, PageBreak)
	if text == "" {
		log.Infof("[Extractor] no extractable text layer on any of %d pages, falling back to OCR", doc.NumPages())
		text, err = e.ocrText(data)
		if err != nil {
			return Result{}, apperr.Wrap(apperr.KindProcessingFailure,
				"OCR fallback failed", err)
		}
	}

	return Result{Text: text, Metadata: doc.Info()}, nil
}

// ocrText renders every page and concatenates the raw per-page OCR output
// in page order.
func (e *Extractor) ocrText(data []byte) (string, error) {
	images, err := e.renderer.RenderPages(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, img := range images {
		pageText, err := e.recognizer.Recognize(img)
		if err != nil {
			return "", err
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

// PageCount derives the page count from the page-break markers in extracted
// text: zero for empty text, markers plus one otherwise.
func PageCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, PageBreak) + 1
}
