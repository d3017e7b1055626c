package service

import (
	"context"
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"go.uber.org/zap"
)

// ============================================
// Role Resolver + Authorization Guard
// ============================================

// PermissionService answers "what role does this user hold in this
// committee" and enforces role preconditions. It never mutates state.
type PermissionService interface {
	// ResolveRole returns the user's role in the committee, or "" when the
	// user is not a member. Lookup failures also resolve to "".
	ResolveRole(ctx context.Context, userID, committeeID string) string

	// Guard fails unless the user is a member holding one of allowedRoles.
	// No allowedRoles means any member passes.
	Guard(ctx context.Context, userID, committeeID string, allowedRoles ...string) (*repository.CommitteeMember, error)
}

type permissionService struct {
	committeeRepo repository.CommitteeRepository
	log           *zap.Logger
}

func NewPermissionService(committeeRepo repository.CommitteeRepository, logger *zap.Logger) PermissionService {
	return &permissionService{
		committeeRepo: committeeRepo,
		log:           logger.Named("permission"),
	}
}

func (s *permissionService) membership(ctx context.Context, userID, committeeID string) *repository.CommitteeMember {
	member, err := s.committeeRepo.FindMember(ctx, committeeID, userID)
	if err != nil {
		s.log.Warn("membership lookup failed",
			zap.String("user_id", userID),
			zap.String("committee_id", committeeID),
			zap.Error(err),
		)
		return nil
	}
	return member
}

func (s *permissionService) ResolveRole(ctx context.Context, userID, committeeID string) string {
	if userID == "" || committeeID == "" {
		return ""
	}
	if m := s.membership(ctx, userID, committeeID); m != nil {
		return m.Role
	}
	return ""
}

func (s *permissionService) Guard(ctx context.Context, userID, committeeID string, allowedRoles ...string) (*repository.CommitteeMember, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: authentication required", ErrUnauthorized)
	}
	if committeeID == "" {
		return nil, fmt.Errorf("%w: committee id is required", ErrInvalidInput)
	}

	member := s.membership(ctx, userID, committeeID)
	if member == nil {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	if len(allowedRoles) == 0 {
		return member, nil
	}
	for _, role := range allowedRoles {
		if member.Role == role {
			return member, nil
		}
	}
	return nil, fmt.Errorf("%w: insufficient role", ErrForbidden)
}
