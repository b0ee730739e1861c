package utils

import (
	"os"
	"path/filepath"
	"testing"

	"resumescreen/internal/document"
	"resumescreen/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "Jane Doe")
	image := writeFile(t, dir, "photo.png", "png")

	tests := []struct {
		name string
		path string
		code string
	}{
		{"valid", resume, ""},
		{"empty", "", errors.ErrCodeInvalidRequest},
		{"missing", filepath.Join(dir, "nope.txt"), errors.ErrCodeFileNotFound},
		{"directory", dir, errors.ErrCodeInvalidRequest},
		{"unsupported", image, errors.ErrCodeUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.path)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.HasCode(err, tt.code), "Expected %s, got %v", tt.code, err)
		})
	}
}

func TestReadResumeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "jane.md", "# Jane Doe")

	file, err := ReadResumeFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "jane.md", file.Name)
	assert.Equal(t, document.MIMEMarkdown, file.MIMEType)
	assert.Equal(t, "# Jane Doe", string(file.Data))

	_, err = ReadResumeFile(path, 4)
	assert.True(t, errors.IsValidation(err), "Expected size error, got %v", err)
}

func TestCollectResumePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.pdf", "")
	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "notes.png", "")
	writeFile(t, dir, ".hidden.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0750))
	extra := writeFile(t, t.TempDir(), "extra.docx", "")

	paths, err := CollectResumePaths([]string{dir, extra})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.pdf"),
		extra,
	}, paths)

	_, err = CollectResumePaths([]string{filepath.Join(dir, "missing")})
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for size, expected := range tests {
		if got := FormatFileSize(size); got != expected {
			t.Errorf("Expected %s for %d, got %s", expected, size, got)
		}
	}
}
