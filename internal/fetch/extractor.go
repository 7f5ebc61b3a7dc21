package fetch

import (
	"bytes"
	"fmt"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Extractor converts fetched document bytes into plain text. PDF output
// carries page markers so chunking can preserve page numbers.
type Extractor struct{}

// NewExtractor creates an extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// DetectType resolves a document type from the source URL, the declared
// content type, and finally the leading bytes.
func DetectType(source, contentType string, body []byte) model.DocumentType {
	lowered := strings.ToLower(source)
	if idx := strings.IndexAny(lowered, "?#"); idx >= 0 {
		lowered = lowered[:idx]
	}
	switch {
	case strings.HasSuffix(lowered, ".pdf"):
		return model.DocTypePDF
	case strings.HasSuffix(lowered, ".docx"):
		return model.DocTypeDOCX
	case strings.HasSuffix(lowered, ".html"), strings.HasSuffix(lowered, ".htm"):
		return model.DocTypeHTML
	case strings.HasSuffix(lowered, ".txt"):
		return model.DocTypeText
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return model.DocTypePDF
	case strings.Contains(ct, "wordprocessingml"):
		return model.DocTypeDOCX
	case strings.Contains(ct, "text/html"):
		return model.DocTypeHTML
	case strings.Contains(ct, "text/plain"):
		return model.DocTypeText
	}

	return sniffType(body)
}

func sniffType(body []byte) model.DocumentType {
	switch {
	case bytes.HasPrefix(body, []byte("%PDF-")):
		return model.DocTypePDF
	case bytes.HasPrefix(body, []byte("PK\x03\x04")):
		return model.DocTypeDOCX
	default:
		trimmed := bytes.TrimLeft(body, " \t\r\n")
		lowered := bytes.ToLower(trimmed)
		if bytes.HasPrefix(lowered, []byte("<!doctype html")) || bytes.HasPrefix(lowered, []byte("<html")) {
			return model.DocTypeHTML
		}
	}
	return model.DocTypeUnknown
}

// Extract returns the document's plain text. Unknown types fall back to a
// lossy UTF-8 decode so a run degrades instead of failing.
func (e *Extractor) Extract(doc *Document) (string, error) {
	switch DetectType(doc.Source, doc.ContentType, doc.Body) {
	case model.DocTypePDF:
		return e.ExtractPDF(doc.Body)
	case model.DocTypeDOCX:
		return e.ExtractDOCX(doc.Body)
	case model.DocTypeHTML:
		return e.ExtractHTML(doc.Body)
	default:
		return strings.ToValidUTF8(string(doc.Body), ""), nil
	}
}

// ExtractPDF pulls text page by page, prefixing each page with a marker
// the chunker understands.
func (e *Extractor) ExtractPDF(body []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", pageNum, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n--- Page %d ---\n%s\n", pageNum, text)
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no text content in pdf")
	}
	return out, nil
}

// ExtractDOCX converts a Word document through docconv.
func (e *Extractor) ExtractDOCX(body []byte) (string, error) {
	result, err := docconv.Convert(bytes.NewReader(body), docxMIME, false)
	if err != nil {
		return "", fmt.Errorf("convert docx: %w", err)
	}
	if result.Body == "" {
		return "", fmt.Errorf("no text content in docx")
	}
	return result.Body, nil
}

// ExtractHTML collects visible text, skipping script and style subtrees.
func (e *Extractor) ExtractHTML(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String()), nil
}
