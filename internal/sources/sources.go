// Package sources loads raw source material from local files into a
// uniform Material record. Supported formats: markdown, plain text, JSON,
// HTML, PDF and DOCX. Loading is the only place the pipeline touches the
// filesystem for input.
package sources

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// Material is one loaded piece of source content, ready for extraction.
type Material struct {
	ID       string    `json:"id"`        // Unique identifier for this load
	Title    string    `json:"title"`     // Derived from content or filename
	Path     string    `json:"path"`      // Source file path
	Format   string    `json:"format"`    // md, txt, json, html, pdf or docx
	Content  string    `json:"content"`   // Extracted plain text
	LoadedAt time.Time `json:"loaded_at"` // When the file was read
}

// Load reads the file and extracts its text according to the extension.
func Load(path string) (*Material, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	var title, content string
	switch format {
	case "pdf":
		content, err = extractPDF(path)
	case "docx":
		content, err = extractDOCX(path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			break
		}
		switch format {
		case "json":
			title, content, err = extractJSON(data)
		case "html":
			content, err = extractHTML(data)
		default:
			content = string(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("no text content in %s", path)
	}

	if title == "" {
		title = deriveTitle(content, format)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &Material{
		ID:       uuid.NewString(),
		Title:    title,
		Path:     path,
		Format:   format,
		Content:  content,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// formatFor maps a file extension onto a supported format tag.
func formatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "md", nil
	case ".txt", ".text":
		return "txt", nil
	case ".json":
		return "json", nil
	case ".html", ".htm":
		return "html", nil
	case ".pdf":
		return "pdf", nil
	case ".docx":
		return "docx", nil
	default:
		return "", fmt.Errorf("unsupported source format %q", filepath.Ext(path))
	}
}

// extractJSON accepts either a bare JSON string or an object with a title
// and a content/text field.
func extractJSON(data []byte) (string, string, error) {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		return "", bare, nil
	}

	var doc struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", "", fmt.Errorf("JSON source must be a string or an object with content/text: %w", err)
	}

	content := doc.Content
	if content == "" {
		content = doc.Text
	}
	return doc.Title, content, nil
}

// extractHTML strips markup and returns the document body text.
func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Find("body").Text(), nil
}

// extractPDF walks every page and concatenates its plain text. Pages that
// fail to decode are skipped rather than failing the whole document.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var content strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.WriteString(text)
		content.WriteString("\n")
	}
	return content.String(), nil
}

// extractDOCX pulls the text runs out of word/document.xml. DOCX is a zip
// of XML parts, so the standard library covers it.
func extractDOCX(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return docxText(rc)
	}
	return "", fmt.Errorf("word/document.xml not found in archive")
}

// docxText walks the XML token stream, collecting text runs and inserting
// a newline at each paragraph end.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var content strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch element := token.(type) {
		case xml.StartElement:
			if element.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch element.Name.Local {
			case "t":
				inText = false
			case "p":
				content.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				content.Write(element)
			}
		}
	}
	return content.String(), nil
}

// deriveTitle pulls a title from the content itself: the first markdown
// heading, or the first short line.
func deriveTitle(content string, format string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if format == "md" && strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		}
		if len(trimmed) <= 80 {
			return trimmed
		}
		return ""
	}
	return ""
}

// Chunk splits content into rune-based chunks with overlap for staged
// extraction of long documents. Non-positive sizes take the defaults.
func Chunk(content string, chunkSize int, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 4000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 200
		if overlap >= chunkSize {
			overlap = chunkSize / 10
		}
	}

	runes := []rune(content)
	length := len(runes)
	if length == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < length; i += chunkSize - overlap {
		end := i + chunkSize
		if end > length {
			end = length
		}
		chunks = append(chunks, string(runes[i:end]))
		if end >= length {
			break
		}
	}
	return chunks
}
