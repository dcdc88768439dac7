package handler

import (
	"customer-service/internal/api/handler/dto"
	"net/http"
)

const (
	serviceName    = "Customer REST API Service"
	serviceVersion = "1.0"
)

type IndexHandler struct {
	baseURL string
}

func NewIndexHandler(baseURL string) *IndexHandler {
	return &IndexHandler{baseURL: baseURL}
}

// Index handles GET /
// @Summary Service descriptor
// @Tags Service
// @Produce json
// @Success 200 {object} dto.IndexResponse
// @Router / [get]
func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.IndexResponse{
		Name:    serviceName,
		Version: serviceVersion,
		URL:     requestBaseURL(h.baseURL, r) + "/customers",
	})
}

// Health handles GET /health
// @Summary Liveness probe
// @Tags Service
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *IndexHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}
