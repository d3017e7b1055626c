package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-committee-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-committee-backend/internal/models"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Debate Handler
// ============================================

type DebateHandler struct {
	debateService service.DebateService
	errs          *errorResponder
}

func (h *DebateHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateDebateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.debateService.CreateEntry(c.Request.Context(), c.Param("id"), userID, req.Position, req.Content)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDebateEntryResponse(entry))
}

func (h *DebateHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	entries, err := h.debateService.ListEntries(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	resp := make([]models.DebateEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toDebateEntryResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}
