package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
)

func TestCheckUploadSize(t *testing.T) {
	require.NoError(t, checkUploadSize("a.pdf", 10, 0))
	require.NoError(t, checkUploadSize("a.pdf", 10, 10))
	err := checkUploadSize("a.pdf", 3*1024*1024, 2*1024*1024)
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.Contains(t, err.Error(), "3MB, over the 2MB upload limit")
}

func TestFormatSize(t *testing.T) {
	require.Equal(t, "0B", formatSize(0))
	require.Equal(t, "512B", formatSize(512))
	require.Equal(t, "2KB", formatSize(2048))
	require.Equal(t, "20MB", formatSize(20*1024*1024))
}
