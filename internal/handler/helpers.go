package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/manualqa/internal/middleware"
	"github.com/xxxsen/manualqa/internal/pkg/errcode"
	appErr "github.com/xxxsen/manualqa/internal/pkg/errors"
	"github.com/xxxsen/manualqa/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code, msg := errorCode(err)
	logger := logutil.GetLogger(c.Request.Context()).With(
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("code", code),
		zap.Error(err),
	)
	if code == errcode.ErrInternal || code == errcode.ErrChunkingFailure {
		logger.Error("request failed")
	} else {
		logger.Warn("request rejected")
	}
	response.Error(c, code, msg)
}

func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, appErr.ErrNotFound):
		return errcode.ErrNotFound, err.Error()
	case errors.Is(err, appErr.ErrDuplicateDocument):
		return errcode.ErrDuplicateDocument, err.Error()
	case errors.Is(err, appErr.ErrEmptyExtraction):
		return errcode.ErrEmptyExtraction, err.Error()
	case errors.Is(err, appErr.ErrInvalidQuestion):
		return errcode.ErrInvalidQuestion, "question is required"
	case errors.Is(err, appErr.ErrUnsupportedFile):
		return errcode.ErrInvalidFile, err.Error()
	case errors.Is(err, appErr.ErrChunkingFailure):
		return errcode.ErrChunkingFailure, "failed to split document"
	case errors.Is(err, appErr.ErrCompletionUnavailable):
		return errcode.ErrAIUnavailable, "answering service unavailable"
	case errors.Is(err, appErr.ErrInvalid):
		return errcode.ErrInvalid, err.Error()
	case errors.Is(err, appErr.ErrConflict):
		return errcode.ErrConflict, "conflict"
	case errors.Is(err, appErr.ErrTooMany):
		return errcode.ErrTooMany, "too many requests"
	default:
		return errcode.ErrInternal, "internal error"
	}
}
