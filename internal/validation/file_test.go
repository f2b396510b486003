package validation

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

func TestValidateFile(t *testing.T) {
	pdf := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("x"), 64)...)

	detected, err := ValidateFile(formFile(t, "plan.pdf", pdf), AttachmentConstraints)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", detected)

	detected, err = ValidateFile(formFile(t, "notes.txt", []byte("meeting notes")), AttachmentConstraints)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", detected)

	_, err = ValidateFile(formFile(t, "plan.exe", pdf), AttachmentConstraints)
	assert.ErrorContains(t, err, "invalid file extension")

	_, err = ValidateFile(formFile(t, "page.pdf", []byte("<html><body>hi</body></html>")), AttachmentConstraints)
	assert.ErrorContains(t, err, "invalid file type")

	_, err = ValidateFile(formFile(t, "plan.pdf", pdf))
	assert.Error(t, err)
}

func TestValidateFile_TooLarge(t *testing.T) {
	small := FileConstraints{
		AllowedMimeTypes:  map[string]bool{"text/plain; charset=utf-8": true},
		AllowedExtensions: map[string]bool{".txt": true},
		MaxSize:           4,
	}

	_, err := ValidateFile(formFile(t, "big.txt", []byte("too long")), small)
	assert.ErrorContains(t, err, "file too large")
}
