// Package extract turns uploaded manual files into plain text.
package extract

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

func kindOfMime(mt string) Kind {
	mt, _, err := mime.ParseMediaType(mt)
	if err != nil {
		return KindUnknown
	}
	switch mt {
	case "application/pdf":
		return KindPDF
	case "text/plain":
		return KindText
	default:
		return KindUnknown
	}
}

// DetectKind resolves the file kind from the extension, then the declared content type, then
// the leading bytes of the file.
func DetectKind(filename, contentType string, head []byte) (Kind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, nil
	case ".txt":
		return KindText, nil
	}
	if kind := kindOfMime(contentType); kind != KindUnknown {
		return kind, nil
	}
	if len(head) > 0 {
		if kind := kindOfMime(http.DetectContentType(head)); kind != KindUnknown {
			return kind, nil
		}
	}
	return KindUnknown, fmt.Errorf("%s: only PDF and TXT files are supported: %w", filename, appErr.ErrUnsupportedFile)
}
