package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// sniffImage detects the content type from the leading bytes and checks
// it against the allowed image types. The file name is never trusted.
func sniffImage(data []byte) (*mimetype.MIME, error) {
	detected := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return detected, nil
		}
	}
	return nil, fmt.Errorf("unsupported file type %s, expected %s", detected.String(), humanReadableList(allowedImageTypes))
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}
