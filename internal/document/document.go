// Package document turns uploaded resume files into plain text.
package document

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumescreen/internal/errors"
)

// Supported MIME types
const (
	MIMEPlain    = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEHTML     = "text/html"
	MIMEPDF      = "application/pdf"
	MIMEDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var extensionTypes = map[string]string{
	".txt":      MIMEPlain,
	".text":     MIMEPlain,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
	".html":     MIMEHTML,
	".htm":      MIMEHTML,
	".pdf":      MIMEPDF,
	".docx":     MIMEDOCX,
}

// Extractor converts file bytes of a given MIME type into text
type Extractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// TypeForFile guesses a MIME type from a file name, or "" when unknown
func TypeForFile(name string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(name))]
}

// IsSupportedFile reports whether a file name has a supported extension
func IsSupportedFile(name string) bool {
	return TypeForFile(name) != ""
}

// SupportedExtensions lists every recognized file extension
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionTypes))
	for ext := range extensionTypes {
		exts = append(exts, ext)
	}
	return exts
}

// DefaultExtractor handles plain text, markdown, HTML, PDF and DOCX
type DefaultExtractor struct {
	logger *errors.Logger
}

// NewExtractor creates the default extractor
func NewExtractor(logger *errors.Logger) *DefaultExtractor {
	return &DefaultExtractor{logger: logger}
}

// ExtractText returns the cleaned text of a document. Unknown MIME types fail
// with UnsupportedFormatError; anything that goes wrong while reading a
// supported type fails with ParseError.
func (e *DefaultExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mimeType = normalizeMIME(mimeType)

	var (
		text string
		err  error
	)
	switch mimeType {
	case MIMEPlain, MIMEMarkdown:
		text, err = plainText(data)
	case MIMEHTML:
		text, err = htmlText(data)
	case MIMEPDF:
		text, err = pdfText(data)
	case MIMEDOCX:
		text, err = docxText(data)
	default:
		return "", errors.NewUnsupportedFormatError(mimeType)
	}
	if err != nil {
		e.logger.LogError(err, "Text extraction failed", "mime_type", mimeType, "bytes", len(data))
		return "", errors.NewParseError("Failed to parse resume file", err).WithContext("mime_type", mimeType)
	}

	cleaned := Clean(text)
	if strings.TrimSpace(cleaned) == "" {
		return "", errors.NewParseError("Failed to parse resume file", nil).
			WithContext("mime_type", mimeType).
			WithContext("reason", "no text content")
	}
	e.logger.Debug("Extracted resume text", "mime_type", mimeType, "bytes", len(data), "chars", len(cleaned))
	return cleaned, nil
}

// normalizeMIME drops parameters such as "; charset=utf-8"
func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), " "), nil
	}
	return string(data), nil
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes line endings, strips non-printable and non-ASCII
// characters, collapses runs of spaces and tabs, and trims every line
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsSpace(r):
			return ' '
		case r < 0x20 || r > 0x7e:
			return -1
		}
		return r
	}, text)

	text = horizontalSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
