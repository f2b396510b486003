package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// AttachmentConstraints covers files attached to objectives.
var AttachmentConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"application/pdf":           true,
		"image/jpeg":                true,
		"image/png":                 true,
		"text/plain; charset=utf-8": true,
		"application/zip":           true, // .docx and .xlsx are zip containers
	},
	AllowedExtensions: map[string]bool{
		".pdf":  true,
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".txt":  true,
		".docx": true,
		".xlsx": true,
	},
	MaxSize: 30 << 20, // 30MB
}

// ValidateFile checks an upload against one or more constraint sets and
// returns the detected content type. The file must match at least one set.
func ValidateFile(header *multipart.FileHeader, constraints ...FileConstraints) (string, error) {
	if len(constraints) == 0 {
		return "", fmt.Errorf("no file constraints provided")
	}

	var lastErr error
	for _, constraint := range constraints {
		detected, err := validateAgainstConstraint(header, constraint)
		if err == nil {
			return detected, nil
		}
		lastErr = err
	}

	return "", lastErr
}

func validateAgainstConstraint(header *multipart.FileHeader, constraints FileConstraints) (string, error) {
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return "", fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// DetectContentType looks at most at the first 512 bytes.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	seeker, ok := file.(io.Seeker)
	if ok {
		_, err = seeker.Seek(0, io.SeekStart)
		if err != nil {
			return "", fmt.Errorf("failed to reset file pointer: %w", err)
		}
	}

	detectedType := http.DetectContentType(buffer[:n])

	if !constraints.AllowedMimeTypes[detectedType] {
		return "", fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return "", fmt.Errorf("invalid file extension: %s", ext)
	}

	return detectedType, nil
}
