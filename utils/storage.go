package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// image uploads are capped at 10MB
const maxImageSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks size and sniffs the content type of an uploaded image.
func ValidateImage(fh *multipart.FileHeader) error {
	if fh.Size > maxImageSize {
		return errors.New("image exceeds the 10MB limit")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	// only the first 512 bytes are needed to detect the type
	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && n == 0 {
		return err
	}

	contentType := http.DetectContentType(buffer[:n])
	if !allowedImageTypes[contentType] {
		return fmt.Errorf("unsupported image type %s", contentType)
	}
	return nil
}

// UploadImage stores an uploaded image in the Supabase bucket and returns its
// public URL. The object is named <folder>/<objectID><ext>.
func UploadImage(fh *multipart.FileHeader, objectID string, folder string) (string, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	if supabaseURL == "" || supabaseKey == "" {
		return "", errors.New("object storage is not configured")
	}
	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		bucket = "article-images"
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	objectPath := objectID + strings.ToLower(filepath.Ext(fh.Filename))
	if folder != "" {
		objectPath = folder + "/" + objectPath
	}

	contentType := fh.Header.Get("Content-Type")
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	client := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)
	if _, err := client.UploadFile(bucket, objectPath, f, options); err != nil {
		return "", err
	}

	publicURL := client.GetPublicUrl(bucket, objectPath)
	return publicURL.SignedURL, nil
}
