package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-committee-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-committee-backend/internal/models"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Vote Handler
// ============================================

type VoteHandler struct {
	voteService service.VoteService
	errs        *errorResponder
}

// Cast answers 201 for a new vote and 200 when the caller had already
// voted, returning the original vote either way.
func (h *VoteHandler) Cast(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	vote, created, err := h.voteService.CastVote(c.Request.Context(), c.Param("id"), userID, req.Position)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toVoteResponse(vote))
}

func (h *VoteHandler) Tally(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	tally, err := h.voteService.GetTally(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusOK, toTallyResponse(tally))
}
