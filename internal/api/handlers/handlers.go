package handlers

import (
	"errors"
	"net/http"

	"github.com/Marga-Ghale/ora-committee-backend/internal/models"
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Committee *CommitteeHandler
	Motion    *MotionHandler
	Vote      *VoteHandler
	Debate    *DebateHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, logger *zap.Logger) *Handlers {
	errs := &errorResponder{log: logger}
	return &Handlers{
		Auth:      &AuthHandler{authService: services.Auth, errs: errs},
		User:      &UserHandler{userService: services.User, errs: errs},
		Committee: &CommitteeHandler{committeeService: services.Committee, motionService: services.Motion, errs: errs},
		Motion:    &MotionHandler{motionService: services.Motion, errs: errs},
		Vote:      &VoteHandler{voteService: services.Vote, errs: errs},
		Debate:    &DebateHandler{debateService: services.Debate, errs: errs},
	}
}

// ============================================
// Error Mapping
// ============================================

type errorResponder struct {
	log *zap.Logger
}

// handle maps a service error to a status code. Known kinds carry their
// message to the client; anything else is logged and hidden.
func (r *errorResponder) handle(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		r.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// toPublicUserResponse omits the email of users other than the caller.
func toPublicUserResponse(u *repository.User) *models.UserResponse {
	if u == nil {
		return nil
	}
	resp := toUserResponse(u)
	resp.Email = ""
	return &resp
}

func toCommitteeResponse(c *repository.Committee) models.CommitteeResponse {
	return models.CommitteeResponse{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		VotingThreshold: c.VotingThreshold,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toMemberResponse(m *repository.CommitteeMember) models.MemberResponse {
	return models.MemberResponse{
		ID:          m.ID,
		CommitteeID: m.CommitteeID,
		UserID:      m.UserID,
		Role:        m.Role,
		JoinedAt:    m.JoinedAt,
		User:        toPublicUserResponse(m.User),
	}
}

func toMotionResponse(m *repository.Motion) models.MotionResponse {
	return models.MotionResponse{
		ID:          m.ID,
		CommitteeID: m.CommitteeID,
		AuthorID:    m.AuthorID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		NextStatus:  types.NextStatuses(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMotionEventResponse(e *repository.MotionEvent) models.MotionEventResponse {
	return models.MotionEventResponse{
		ID:         e.ID,
		MotionID:   e.MotionID,
		ActorID:    e.ActorID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		CreatedAt:  e.CreatedAt,
	}
}

func toVoteResponse(v *repository.Vote) *models.VoteResponse {
	if v == nil {
		return nil
	}
	return &models.VoteResponse{
		ID:        v.ID,
		MotionID:  v.MotionID,
		AuthorID:  v.AuthorID,
		Position:  v.Position,
		CreatedAt: v.CreatedAt,
	}
}

func toTallyResponse(t *service.TallyView) models.TallyResponse {
	return models.TallyResponse{
		MotionID:     t.MotionID,
		Status:       t.Status,
		Mode:         t.Mode,
		Eligible:     t.Eligible,
		Threshold:    t.Threshold,
		Support:      t.Support,
		Oppose:       t.Oppose,
		Cast:         t.Cast,
		Remaining:    t.Remaining,
		SupportRatio: t.SupportRatio.StringFixed(4),
		Progress:     t.Progress.StringFixed(4),
		Outcome:      t.Outcome,
		MyVote:       toVoteResponse(t.MyVote),
	}
}

func toDebateEntryResponse(e *repository.DebateEntry) models.DebateEntryResponse {
	return models.DebateEntryResponse{
		ID:        e.ID,
		MotionID:  e.MotionID,
		AuthorID:  e.AuthorID,
		Position:  e.Position,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
		Author:    toPublicUserResponse(e.Author),
	}
}
