package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/manualqa/internal/pkg/errcode"
	"github.com/xxxsen/manualqa/internal/pkg/response"
	"github.com/xxxsen/manualqa/internal/service"
)

type QueryHandler struct {
	query *service.QueryService
}

func NewQueryHandler(query *service.QueryService) *QueryHandler {
	return &QueryHandler{query: query}
}

type QueryRequest struct {
	Question string `json:"question"`
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	record, err := h.query.Ask(c.Request.Context(), req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, record)
}
