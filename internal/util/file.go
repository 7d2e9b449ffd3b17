package util

import (
	"net/http"
	"path/filepath"
	"slices"
	"strings"
)

// SniffLen is how many leading bytes DetectImageType needs.
const SniffLen = 512

// DetectImageType sniffs the leading bytes of an upload and accepts only images.
func DetectImageType(head []byte) (string, error) {
	mimeType := http.DetectContentType(head)
	if !strings.HasPrefix(mimeType, "image/") {
		return mimeType, ErrInvalidFileType
	}
	return mimeType, nil
}

func HasImageExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(AllowedImageExtensions, ext)
}
