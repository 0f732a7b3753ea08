package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"techdocs/internal/domain"
)

// PDFLoader reads a local PDF file and extracts its text.
type PDFLoader struct{}

// NewPDFLoader creates a PDF loader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Load validates the path, extracts text page by page, and returns one
// document tagged with file provenance.
func (l *PDFLoader) Load(source string) ([]domain.Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", source)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", source)
	}
	if strings.ToLower(filepath.Ext(source)) != ".pdf" {
		return nil, fmt.Errorf("file is not a PDF: %s", source)
	}

	text, err := extractPDFText(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load PDF from %q: %w", source, err)
	}

	absPath, err := filepath.Abs(source)
	if err != nil {
		absPath = source
	}

	return []domain.Document{{
		Text: text,
		Metadata: domain.Metadata{
			SourceType: l.SourceType(),
			Filename:   filepath.Base(source),
			FilePath:   absPath,
		},
	}}, nil
}

// SourceType identifies this as a PDF source.
func (l *PDFLoader) SourceType() string {
	return "pdf"
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNum, err)
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")
	}

	return strings.TrimSpace(sb.String()), nil
}
