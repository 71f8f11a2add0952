package handler

import (
	"fmt"
	"strconv"

	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
)

// checkUploadSize rejects a single file larger than limit. A non-positive limit disables it.
func checkUploadSize(filename string, size, limit int64) error {
	if limit <= 0 || size <= limit {
		return nil
	}
	return fmt.Errorf("%s is %s, over the %s upload limit: %w", filename, formatSize(size), formatSize(limit), appErr.ErrInvalid)
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case bytes <= 0:
		return "0B"
	case bytes >= mb:
		return strconv.FormatInt(bytes/mb, 10) + "MB"
	case bytes >= kb:
		return strconv.FormatInt(bytes/kb, 10) + "KB"
	default:
		return strconv.FormatInt(bytes, 10) + "B"
	}
}
