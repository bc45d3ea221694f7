// Package document turns uploaded files into normalized per-page text.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// Page is one extracted page. Formats without pagination yield a single page 1.
type Page struct {
	Number int
	Text   string
}

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
}

func Supported(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extract reads the file at path and returns its non-empty pages, normalized.
func Extract(path string) ([]Page, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		pages []Page
		err   error
	)
	switch ext {
	case ".pdf":
		pages, err = extractPDF(path)
	case ".docx":
		pages, err = singlePage(extractDOCX(path))
	case ".html", ".htm":
		pages, err = singlePage(extractHTMLFile(path))
	case ".txt", ".md":
		pages, err = singlePage(extractPlain(path))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	out := pages[:0]
	for _, p := range pages {
		p.Text = Normalize(p.Text)
		if p.Text != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func singlePage(text string, err error) ([]Page, error) {
	if err != nil {
		return nil, err
	}
	return []Page{{Number: 1, Text: text}}, nil
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return string(data), nil
}

func extractPDF(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	pages := make([]Page, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf %s page %d: %w", filepath.Base(path), i, err)
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\r]+`)
	blankLines      = regexp.MustCompile(`\n\s*\n+`)
)

// Normalize applies NFKC and collapses whitespace, keeping paragraph breaks.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
