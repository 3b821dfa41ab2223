package extractor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"pdf-chat-go/internal/apperr"
)

// Document gives page-ordered access to a parsed PDF.
type Document interface {
	// NumPages returns the number of pages in the document.
	NumPages() int
	// PageText returns the text layer of the 1-based page n, or "" when the
	// page has none.
	PageText(n int) (string, error)
	// Info returns the information dictionary as ordered metadata. A missing
	// dictionary yields an empty mapping.
	Info() Metadata
}

// Parser opens raw bytes as a PDF document structure.
type Parser interface {
	Parse(data []byte) (Document, error)
}

// PDFParser is the production Parser. Encrypted documents are probed with an
// empty password by the underlying reader; when that fails the error is
// surfaced as the password-protected kind, never as a generic failure.
type PDFParser struct{}

// NewPDFParser creates the production parser.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse implements Parser.
func (p *PDFParser) Parse(data []byte) (doc Document, err error) {
	// The reader panics on some malformed inputs instead of returning an
	// error; fold those into the malformed-document kind.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = apperr.Wrap(apperr.KindMalformedDocument,
				"not a valid PDF document", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, apperr.Wrap(apperr.KindPasswordProtected,
				"PDF is password protected and cannot be accessed without the correct password", err)
		}
		return nil, apperr.Wrap(apperr.KindMalformedDocument, "not a valid PDF document", err)
	}
	return &pdfDocument{reader: reader}, nil
}

type pdfDocument struct {
	reader *pdf.Reader
}

func (d *pdfDocument) NumPages() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	return text, nil
}

func (d *pdfDocument) Info() Metadata {
	var meta Metadata

	defer func() {
		// Malformed info dictionaries are not worth failing the upload over.
		recover()
	}()

	info := d.reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	for _, key := range info.Keys() {
		value := info.Key(key)
		switch value.Kind() {
		case pdf.Null:
			meta = meta.SetNil(key)
		case pdf.String:
			meta = meta.Set(key, value.Text())
		case pdf.Name:
			meta = meta.Set(key, value.Name())
		default:
			meta = meta.Set(key, value.String())
		}
	}
	return meta
}
