package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-committee-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-committee-backend/internal/models"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Committee Handler
// ============================================

type CommitteeHandler struct {
	committeeService service.CommitteeService
	motionService    service.MotionService
	errs             *errorResponder
}

func (h *CommitteeHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	committee, err := h.committeeService.Create(c.Request.Context(), userID, req.Name, req.Description, req.VotingThreshold)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCommitteeResponse(committee))
}

func (h *CommitteeHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	committees, err := h.committeeService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	resp := make([]models.CommitteeResponse, 0, len(committees))
	for _, committee := range committees {
		resp = append(resp, toCommitteeResponse(committee))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommitteeHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	committee, err := h.committeeService.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusOK, toCommitteeResponse(committee))
}

func (h *CommitteeHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateCommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	committee, err := h.committeeService.Update(c.Request.Context(), c.Param("id"), userID, req.Name, req.Description, req.VotingThreshold)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusOK, toCommitteeResponse(committee))
}

// ============================================
// Members
// ============================================

func (h *CommitteeHandler) ListMembers(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	members, err := h.committeeService.ListMembers(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	resp := make([]models.MemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMemberResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommitteeHandler) AddMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	member, err := h.committeeService.AddMember(c.Request.Context(), c.Param("id"), userID, req.UserID, req.Username, req.Role)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMemberResponse(member))
}

func (h *CommitteeHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.committeeService.UpdateMemberRole(c.Request.Context(), c.Param("id"), userID, c.Param("userId"), req.Role); err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

func (h *CommitteeHandler) RemoveMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.committeeService.RemoveMember(c.Request.Context(), c.Param("id"), userID, c.Param("userId")); err != nil {
		h.errs.handle(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ============================================
// Committee Motions
// ============================================

func (h *CommitteeHandler) ProposeMotion(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateMotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	motion, err := h.motionService.Propose(c.Request.Context(), c.Param("id"), userID, req.Title, req.Description)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMotionResponse(motion))
}

func (h *CommitteeHandler) ListMotions(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	motions, err := h.motionService.ListByCommittee(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.errs.handle(c, err)
		return
	}

	resp := make([]models.MotionResponse, 0, len(motions))
	for _, m := range motions {
		resp = append(resp, toMotionResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}
