package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"resumescreen/internal/document"
	"resumescreen/internal/errors"
)

// ResumeFile is a resume read from disk
type ResumeFile struct {
	Path     string
	Name     string
	MIMEType string
	Data     []byte
}

// ValidateInputFile checks if a file exists, is readable and is a supported resume format
func ValidateInputFile(filename string) error {
	if filename == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "filename cannot be empty", nil)
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewIOError(errors.ErrCodeFileNotFound, "file does not exist", err).
				WithContext("file", filename)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot access file", err).
			WithContext("file", filename)
	}

	if info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "path is a directory, not a file", nil).
			WithContext("file", filename)
	}

	if !document.IsSupportedFile(filename) {
		return errors.NewUnsupportedFormatError(GetFileExtension(filename)).WithContext("file", filename)
	}

	return nil
}

// ValidateOutputFile checks if the output file path is valid
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot create output directory", err).
					WithContext("dir", dir)
			}
		}
	}

	return nil
}

// ReadResumeFile validates and reads one resume. maxSize <= 0 disables the size check.
func ReadResumeFile(path string, maxSize int64) (*ResumeFile, error) {
	if err := ValidateInputFile(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path) // #nosec G304 -- path is a user-selected input file
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read file", err).WithContext("file", path)
	}
	defer func() { _ = f.Close() }()

	var reader io.Reader = f
	if maxSize > 0 {
		reader = io.LimitReader(f, maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read file", err).WithContext("file", path)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("file exceeds maximum size of %s", FormatFileSize(maxSize)), nil).WithContext("file", path)
	}

	return &ResumeFile{
		Path:     path,
		Name:     filepath.Base(path),
		MIMEType: document.TypeForFile(path),
		Data:     data,
	}, nil
}

// CollectResumePaths expands directories into the supported files they
// contain (non-recursive, sorted) and keeps plain file arguments as given
func CollectResumePaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "file does not exist", err).WithContext("file", path)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read directory", err).WithContext("dir", path)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !document.IsSupportedFile(entry.Name()) {
				continue
			}
			found = append(found, filepath.Join(path, entry.Name()))
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
