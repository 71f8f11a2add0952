package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, kind Kind, data []byte) (string, error) {
	switch kind {
	case KindPDF:
		text, err := extractPDF(data)
		if err != nil {
			logutil.GetLogger(ctx).Warn("pdf extraction failed", zap.Int("size", len(data)), zap.Error(err))
			return "", err
		}
		return text, nil
	case KindText:
		return extractText(data), nil
	default:
		return "", fmt.Errorf("extract %s: %w", kind, appErr.ErrUnsupportedFile)
	}
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v: %w", r, appErr.ErrInvalid)
		}
	}()
	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %v: %w", err, appErr.ErrInvalid)
	}
	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %v: %w", err, appErr.ErrInvalid)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf buffer: %v: %w", err, appErr.ErrInvalid)
	}
	return strings.ToValidUTF8(buf.String(), "�"), nil
}

func extractText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text := strings.ToValidUTF8(string(data), "�")
	return strings.ReplaceAll(text, "\r\n", "\n")
}
