package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/manualqa/internal/pkg/response"
	"github.com/xxxsen/manualqa/internal/service"
)

// ProviderStatus describes one configured completion backend.
type ProviderStatus struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
}

type StatusHandler struct {
	docs      *service.DocumentService
	providers []ProviderStatus
}

func NewStatusHandler(docs *service.DocumentService, providers []ProviderStatus) *StatusHandler {
	return &StatusHandler{docs: docs, providers: providers}
}

func (h *StatusHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "running"})
}

func (h *StatusHandler) APIStatus(c *gin.Context) {
	configured := false
	models := make([]string, 0, len(h.providers))
	for _, p := range h.providers {
		configured = configured || p.Configured
		models = append(models, p.Model)
	}
	providers := h.providers
	if providers == nil {
		providers = []ProviderStatus{}
	}
	response.Success(c, gin.H{
		"ai_configured":    configured,
		"providers":        providers,
		"models_available": models,
		"documents_count":  h.docs.Count(c.Request.Context()),
	})
}
