package extractor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"pdf-chat-go/internal/config"
)

// PageRenderer rasterizes every page of a PDF document in page order.
type PageRenderer interface {
	RenderPages(data []byte) ([]image.Image, error)
}

// Recognizer runs optical character recognition on one page image.
type Recognizer interface {
	Recognize(img image.Image) (string, error)
}

// FitzRenderer renders pages with MuPDF.
type FitzRenderer struct{}

// NewFitzRenderer creates the production page renderer.
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// RenderPages implements PageRenderer.
func (r *FitzRenderer) RenderPages(data []byte) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	defer doc.Close()

	images := make([]image.Image, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", n+1, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// TesseractRecognizer shells out to the tesseract binary. Tesseract cannot
// read PDFs directly, so pages are rendered to PNG first and recognized one
// at a time.
type TesseractRecognizer struct {
	binary    string
	languages string
}

// NewTesseractRecognizer creates a recognizer from config. The binary path
// defaults to "tesseract" on PATH and languages to "tur+eng".
func NewTesseractRecognizer(cfg config.ExtractorConfig) *TesseractRecognizer {
	binary := cfg.TesseractPath
	if binary == "" {
		binary = "tesseract"
	}
	languages := cfg.OCRLanguages
	if languages == "" {
		languages = "tur+eng"
	}
	return &TesseractRecognizer{binary: binary, languages: languages}
}

// Recognize implements Recognizer.
func (t *TesseractRecognizer) Recognize(img image.Image) (string, error) {
	dir, err := os.MkdirTemp("", "ocr-page-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pagePath := filepath.Join(dir, "page.png")
	f, err := os.Create(pagePath)
	if err != nil {
		return "", fmt.Errorf("failed to create page image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write page image: %w", err)
	}

	var out, stderr bytes.Buffer
	cmd := exec.Command(t.binary, pagePath, "stdout", "-l", t.languages)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}
