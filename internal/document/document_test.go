package document

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"resumescreen/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"line endings", "a\r\nb\rc", "a\nb\nc"},
		{"spaces and tabs", "Go \t\t  developer", "Go developer"},
		{"non-ascii stripped", "Résumé • Go", "Rsum Go"},
		{"non-breaking space", "Jane\u00a0Doe", "Jane Doe"},
		{"control characters", "a\x00b\x07c", "abc"},
		{"blank lines collapsed", "a\n\n\n\n b ", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTypeForFile(t *testing.T) {
	assert.Equal(t, MIMEPDF, TypeForFile("cv.PDF"))
	assert.Equal(t, MIMEDOCX, TypeForFile("/tmp/resume.docx"))
	assert.Equal(t, MIMEMarkdown, TypeForFile("resume.md"))
	assert.Empty(t, TypeForFile("resume.doc"))
	assert.False(t, IsSupportedFile("photo.png"))
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(nil)

	text, err := e.ExtractText(context.Background(), []byte("Jane Doe\r\n\tGo   engineer"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo engineer", text)
}

func TestExtractHTML(t *testing.T) {
	e := NewExtractor(nil)
	page := `<html><head><title>CV</title><style>p{color:red}</style></head>
<body><h1>Jane Doe</h1><p>Senior Go engineer</p><script>alert(1)</script><ul><li>Go</li><li>Kafka</li></ul></body></html>`

	text, err := e.ExtractText(context.Background(), []byte(page), MIMEHTML)
	require.NoError(t, err)

	assert.Contains(t, text, "Jane Doe\n")
	assert.Contains(t, text, "Senior Go engineer")
	assert.Contains(t, text, "Go\nKafka")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color")
}

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(docxBody)
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	e := NewExtractor(nil)
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Jane</w:t></w:r><w:r><w:t xml:space="preserve"> Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go, Kafka</w:t></w:r></w:p>
</w:body></w:document>`

	text, err := e.ExtractText(context.Background(), buildDOCX(t, body), MIMEDOCX)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSkills: Go, Kafka", text)
}

func TestExtractErrors(t *testing.T) {
	e := NewExtractor(errors.NewNopLogger())
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		_, err := e.ExtractText(ctx, []byte("x"), "image/png")
		assert.True(t, errors.IsUnsupportedFormat(err), "Expected UnsupportedFormatError, got %v", err)
	})

	t.Run("corrupt docx", func(t *testing.T) {
		_, err := e.ExtractText(ctx, []byte("not a zip"), MIMEDOCX)
		assert.True(t, errors.IsParse(err), "Expected ParseError, got %v", err)
	})

	t.Run("docx without body", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		require.NoError(t, zw.Close())
		_, err := e.ExtractText(ctx, buf.Bytes(), MIMEDOCX)
		assert.True(t, errors.IsParse(err))
	})

	t.Run("corrupt pdf", func(t *testing.T) {
		_, err := e.ExtractText(ctx, []byte("%PDF-garbage"), MIMEPDF)
		assert.True(t, errors.IsParse(err), "Expected ParseError, got %v", err)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := e.ExtractText(ctx, []byte(" \n\t "), MIMEPlain)
		assert.True(t, errors.IsParse(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.ExtractText(cancelled, []byte("text"), MIMEPlain)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
