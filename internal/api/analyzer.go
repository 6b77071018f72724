package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutritheous/backend/internal/service"
	"github.com/nutritheous/backend/internal/types"
)

// AnalyzerHandler exposes the vision pipeline directly for debugging,
// bypassing meal persistence.
type AnalyzerHandler struct {
	analyzer service.IAnalyzerService
}

func NewAnalyzerHandler(analyzer service.IAnalyzerService) *AnalyzerHandler {
	return &AnalyzerHandler{analyzer: analyzer}
}

func (h *AnalyzerHandler) Analyze(c *gin.Context) {
	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ImageURL == "" && req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_url or description required"})
		return
	}

	var (
		result *service.AnalysisResult
		err    error
	)
	if req.ImageURL != "" {
		result, err = h.analyzer.AnalyzeImage(c.Request.Context(), req.ImageURL, req.Description)
	} else {
		result, err = h.analyzer.AnalyzeTextOnly(c.Request.Context(), req.Description)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
