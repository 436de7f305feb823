package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxImageSize is the upload ceiling for image objects.
const MaxImageSize int64 = 10 << 20

// File describes an uploaded file as declared by the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
}

// FileRules constrain uploaded files.
type FileRules struct {
	AllowedTypes []string
	MaxSize      int64
}

// ImageRules accept JPEG, PNG and WebP images up to MaxImageSize.
func ImageRules() FileRules {
	return FileRules{
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
		MaxSize:      MaxImageSize,
	}
}

// Allows reports whether contentType is on the allow-list.
// An empty allow-list accepts any type.
func (fr FileRules) Allows(contentType string) bool {
	if len(fr.AllowedTypes) == 0 {
		return true
	}
	return slices.Contains(fr.AllowedTypes, contentType)
}

// Check verifies presence, declared type and size, in that order.
func (fr FileRules) Check(f *File) error {
	if f == nil {
		return &Error{Field: "file", Message: "No file provided"}
	}
	if !fr.Allows(f.ContentType) {
		return &Error{
			Field:   "file",
			Message: fmt.Sprintf("Unsupported file type %q: accepted types are %s", f.ContentType, strings.Join(fr.AllowedTypes, ", ")),
		}
	}
	if fr.MaxSize > 0 && f.Size > fr.MaxSize {
		return &Error{
			Field:   "file",
			Message: fmt.Sprintf("File size %s exceeds the %s limit", humanize.IBytes(uint64(f.Size)), humanize.IBytes(uint64(fr.MaxSize))),
		}
	}
	return nil
}
