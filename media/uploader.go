package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"salon-server/types"
)

// MaxImageSize is the largest catalog image accepted
const MaxImageSize = 5 * 1024 * 1024

// Uploader stores an image and returns the URL it is served from
type Uploader interface {
	Upload(ctx context.Context, header *multipart.FileHeader, folder string) (string, error)
}

// ValidateImage checks size and extension (<= 5MB, jpg/jpeg/png/webp)
func ValidateImage(h *multipart.FileHeader) error {
	if h == nil || h.Size <= 0 {
		return types.NewValidation("image is empty")
	}
	if h.Size > MaxImageSize {
		return types.NewValidation("image must be at most 5MB")
	}
	switch strings.ToLower(filepath.Ext(h.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return nil
	}
	return types.NewValidation("image must be a jpg, jpeg, png or webp file")
}

// CloudinaryUploader stores images in a Cloudinary folder
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader configures the client from a cloudinary:// URL.
func NewCloudinaryUploader(cloudinaryURL, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, header *multipart.FileHeader, folder string) (string, error) {
	if err := ValidateImage(header); err != nil {
		return "", err
	}
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	uniqueFilename := true
	overwrite := false
	up, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         path.Join(u.folder, folder),
		PublicID:       strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)),
		UniqueFilename: &uniqueFilename,
		Overwrite:      &overwrite,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload to cloudinary: %w", err)
	}
	if up.SecureURL == "" {
		return "", fmt.Errorf("upload to cloudinary: no URL returned for %s", header.Filename)
	}

	log.Printf("✅ Image uploaded to Cloudinary: %s", up.SecureURL)
	return up.SecureURL, nil
}

// LocalUploader writes images under a directory served as static files
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) *LocalUploader {
	return &LocalUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (u *LocalUploader) Upload(ctx context.Context, header *multipart.FileHeader, folder string) (string, error) {
	if err := ValidateImage(header); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	folder = filepath.Clean("/" + folder)[1:]
	targetDir := filepath.Join(u.dir, folder)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(targetDir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return u.baseURL + "/" + path.Join(filepath.ToSlash(folder), name), nil
}

// New picks Cloudinary when a URL is configured and local disk otherwise.
func New(cloudinaryURL, cloudinaryFolder, dir, baseURL string) (Uploader, error) {
	if cloudinaryURL != "" {
		return NewCloudinaryUploader(cloudinaryURL, cloudinaryFolder)
	}
	log.Printf("⚠️ CLOUDINARY_URL not set, storing uploads under %s", dir)
	return NewLocalUploader(dir, baseURL), nil
}
