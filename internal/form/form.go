// Package form reads uploaded images from multipart requests.
package form

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	magicNumberSeek = 512
	// MaxImageSize is the largest accepted image, in bytes.
	MaxImageSize = 5 << 20
)

// allowedImageTypes lists the simple MIME types we accept.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var mimeTypeSuffix = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

var (
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	ErrNoImageUploaded     = errors.New("image not uploaded")
	ErrImageTooLarge       = errors.New("image too large")
)

type File struct {
	Size     int64
	Data     []byte
	Suffix   string
	MimeType string
}

// ReadFile reads an image, detecting its type from its content.
func ReadFile(file io.ReadCloser) (*File, error) {
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImageUploaded
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	contentType := http.DetectContentType(data[:min(len(data), magicNumberSeek)])
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("mime type %q: %w", contentType, ErrUnsupportedMimeType)
	}

	return &File{
		Size:     int64(len(data)),
		MimeType: contentType,
		Suffix:   mimeTypeSuffix[contentType],
		Data:     data,
	}, nil
}

// ReadImage reads the image in the named field of a parsed multipart
// form. It returns ErrNoImageUploaded when the field is absent.
func ReadImage(r *http.Request, field string) (*File, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ErrNoImageUploaded
	} else if err != nil {
		return nil, fmt.Errorf("reading form file %q: %w", field, err)
	}
	return ReadFile(file)
}
