package handlers

import (
	"context"
	"net/http"

	"github.com/Marga-Ghale/ora-committee-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-committee-backend/internal/models"
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Motion Handler
// ============================================

type MotionHandler struct {
	motionService service.MotionService
	errs          *errorResponder
}

func (h *MotionHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	motion, err := h.motionService.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusOK, toMotionResponse(motion))
}

func (h *MotionHandler) History(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	events, err := h.motionService.History(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	resp := make([]models.MotionEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toMotionEventResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MotionHandler) Second(c *gin.Context) {
	h.transition(c, h.motionService.Second)
}

func (h *MotionHandler) OpenVote(c *gin.Context) {
	h.transition(c, h.motionService.OpenVote)
}

func (h *MotionHandler) ChallengeVeto(c *gin.Context) {
	h.transition(c, h.motionService.ChallengeVeto)
}

func (h *MotionHandler) ChairDecision(c *gin.Context) {
	var req models.ChairDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	h.transition(c, func(ctx context.Context, motionID, actorID string) (*repository.Motion, error) {
		return h.motionService.ChairDecision(ctx, motionID, actorID, req.Action)
	})
}

// transition runs one lifecycle operation on the motion in the path.
func (h *MotionHandler) transition(c *gin.Context, op func(ctx context.Context, motionID, actorID string) (*repository.Motion, error)) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	motion, err := op(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusOK, toMotionResponse(motion))
}
