package media

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-server/types"
)

// fileHeader builds a real multipart header the way a handler would see it.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxImageSize*2))
	_, h, err := req.FormFile("image")
	require.NoError(t, err)
	return h
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage(fileHeader(t, "cut.JPG", []byte("img"))))
	assert.ErrorIs(t, ValidateImage(fileHeader(t, "cut.gif", []byte("img"))), types.ErrValidation)
	assert.ErrorIs(t, ValidateImage(nil), types.ErrValidation)
	assert.ErrorIs(t, ValidateImage(&multipart.FileHeader{Filename: "big.png", Size: MaxImageSize + 1}), types.ErrValidation)
}

func TestLocalUploader(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/uploads/")

	url, err := u.Upload(context.Background(), fileHeader(t, "serum.png", []byte("png-bytes")), "products")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, "products", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))
}

func TestLocalUploaderStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/uploads")

	url, err := u.Upload(context.Background(), fileHeader(t, "x.webp", []byte("w")), "../../escape")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/escape/"))
	_, err = os.Stat(filepath.Join(dir, "escape", filepath.Base(url)))
	assert.NoError(t, err)
}

func TestNewFallsBackToLocal(t *testing.T) {
	u, err := New("", "", t.TempDir(), "/uploads")
	require.NoError(t, err)
	assert.IsType(t, &LocalUploader{}, u)
}
