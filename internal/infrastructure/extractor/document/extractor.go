package document

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
)

// Extractor pulls plain text out of stored contract files. The true file
// type is sniffed from magic bytes; the recorded extension only decides the
// error message when the bytes disagree.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, c *domain.Contract) (string, error) {
	rc, err := e.storage.Open(ctx, c.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open stored file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read stored file: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("stored file is empty: %s", c.FileName)
	}

	switch {
	case isPDF(data):
		return extractPDF(data)
	case isZip(data):
		return extractDOCX(data)
	case c.FileType == domain.FileTypePDF:
		return "", fmt.Errorf("file %s claims pdf but has no %%PDF header", c.FileName)
	default:
		return "", fmt.Errorf("file %s claims docx but is not a zip container", c.FileName)
	}
}

// PDF starts with "%PDF-".
func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

// ZIP local file header: PK\x03\x04. DOCX is a zip container.
func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return normalizeText(string(b)), nil
}

// extractDOCX gathers <w:t> runs from word/document.xml, emitting a newline
// at each paragraph end so sentence boundaries survive for clause matching.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx zip: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("docx open document part: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var v string
				if err := dec.DecodeElement(&v, &t); err != nil {
					return "", fmt.Errorf("docx text run: %w", err)
				}
				out.WriteString(v)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				out.WriteString("\n")
			}
		}
	}
	return normalizeText(out.String()), nil
}

// normalizeText collapses horizontal whitespace per line while keeping
// newlines intact.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
