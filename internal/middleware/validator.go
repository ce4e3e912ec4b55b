package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bryanwahyu/ecoscan/internal/domain/uploads"
)

// Input validation for uploaded images

const defaultImageExt = ".jpg"

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".heic": true,
	".heif": true,
}

// uuid + extension, as produced by the upload store
var uploadNamePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.[a-z]{3,4}$`)

// ImageExtension returns the lowercased extension of a client filename,
// defaulting to .jpg when there is none.
func ImageExtension(filename string) (string, error) {
	filename = SanitizeString(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return defaultImageExt, nil
	}
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("%w: %s", uploads.ErrUnsupportedType, ext)
	}
	return ext, nil
}

// ValidateUploadName checks a name requested under /uploads/ (no path traversal).
func ValidateUploadName(name string) error {
	if !uploadNamePattern.MatchString(name) {
		return fmt.Errorf("invalid upload name")
	}
	if !allowedImageExts[filepath.Ext(name)] {
		return fmt.Errorf("invalid upload name")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}
