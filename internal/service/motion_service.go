package service

import (
	"context"
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
)

// ============================================
// Motion Service
// ============================================

type MotionService interface {
	Propose(ctx context.Context, committeeID, actorID, title string, description *string) (*repository.Motion, error)
	Get(ctx context.Context, motionID, actorID string) (*repository.Motion, error)
	ListByCommittee(ctx context.Context, committeeID, actorID string) ([]*repository.Motion, error)
	History(ctx context.Context, motionID, actorID string) ([]*repository.MotionEvent, error)

	// RequestTransition is the single entry point for user driven status
	// changes. The role operations below delegate to it.
	RequestTransition(ctx context.Context, motionID, actorID, requested string) (*repository.Motion, error)
	Second(ctx context.Context, motionID, actorID string) (*repository.Motion, error)
	ChairDecision(ctx context.Context, motionID, actorID, action string) (*repository.Motion, error)
	OpenVote(ctx context.Context, motionID, actorID string) (*repository.Motion, error)
	ChallengeVeto(ctx context.Context, motionID, actorID string) (*repository.Motion, error)
}

type motionService struct {
	motionRepo  repository.MotionRepository
	permissions PermissionService
	sm          *stateMachine
}

func newMotionService(motionRepo repository.MotionRepository, permissions PermissionService, sm *stateMachine) *motionService {
	return &motionService{
		motionRepo:  motionRepo,
		permissions: permissions,
		sm:          sm,
	}
}

func (s *motionService) Propose(ctx context.Context, committeeID, actorID, title string, description *string) (*repository.Motion, error) {
	title = cleanText(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if _, err := s.permissions.Guard(ctx, actorID, committeeID); err != nil {
		return nil, err
	}

	motion := &repository.Motion{
		CommitteeID: committeeID,
		AuthorID:    actorID,
		Title:       title,
		Description: cleanOptionalText(description),
		Status:      types.StatusProposed,
	}
	if err := s.motionRepo.Create(ctx, motion); err != nil {
		return nil, fmt.Errorf("failed to create motion: %w", err)
	}
	return motion, nil
}

func (s *motionService) find(ctx context.Context, motionID string) (*repository.Motion, error) {
	motion, err := s.motionRepo.FindByID(ctx, motionID)
	if err != nil {
		return nil, err
	}
	if motion == nil {
		return nil, fmt.Errorf("%w: motion not found", ErrNotFound)
	}
	return motion, nil
}

func (s *motionService) Get(ctx context.Context, motionID, actorID string) (*repository.Motion, error) {
	motion, err := s.find(ctx, motionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Guard(ctx, actorID, motion.CommitteeID); err != nil {
		return nil, err
	}
	return motion, nil
}

func (s *motionService) ListByCommittee(ctx context.Context, committeeID, actorID string) ([]*repository.Motion, error) {
	if _, err := s.permissions.Guard(ctx, actorID, committeeID); err != nil {
		return nil, err
	}
	return s.motionRepo.FindByCommitteeID(ctx, committeeID)
}

func (s *motionService) History(ctx context.Context, motionID, actorID string) ([]*repository.MotionEvent, error) {
	motion, err := s.Get(ctx, motionID, actorID)
	if err != nil {
		return nil, err
	}
	return s.motionRepo.FindEvents(ctx, motion.ID)
}

func (s *motionService) RequestTransition(ctx context.Context, motionID, actorID, requested string) (*repository.Motion, error) {
	if !types.IsValidMotionStatus(requested) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, requested)
	}
	motion, err := s.find(ctx, motionID)
	if err != nil {
		return nil, err
	}
	member, err := s.permissions.Guard(ctx, actorID, motion.CommitteeID)
	if err != nil {
		return nil, err
	}
	if err := checkTransitionRole(motion, member, requested); err != nil {
		return nil, err
	}
	return s.sm.apply(ctx, motion, requested, &actorID)
}

// checkTransitionRole applies the per-target role rules. Edge legality is
// left to the state machine.
func checkTransitionRole(m *repository.Motion, member *repository.CommitteeMember, next string) error {
	switch next {
	case types.StatusSeconded:
		if member.UserID == m.AuthorID {
			return fmt.Errorf("%w: cannot second your own motion", ErrForbidden)
		}
	case types.StatusVetoed, types.StatusDebate, types.StatusVoting:
		if member.Role != types.RoleChair {
			return fmt.Errorf("%w: insufficient role", ErrForbidden)
		}
	case types.StatusChallengingVeto:
		if member.Role == types.RoleChair {
			return fmt.Errorf("%w: the chair cannot challenge a veto", ErrForbidden)
		}
	case types.StatusPassed, types.StatusRejected, types.StatusVetoConfirmed:
		return fmt.Errorf("%w: %s is decided by the vote", ErrForbidden, next)
	}
	return nil
}

func (s *motionService) Second(ctx context.Context, motionID, actorID string) (*repository.Motion, error) {
	return s.RequestTransition(ctx, motionID, actorID, types.StatusSeconded)
}

func (s *motionService) ChairDecision(ctx context.Context, motionID, actorID, action string) (*repository.Motion, error) {
	var next string
	switch action {
	case types.ActionApprove:
		next = types.StatusDebate
	case types.ActionVeto:
		next = types.StatusVetoed
	default:
		return nil, fmt.Errorf("%w: action must be APPROVE or VETO", ErrInvalidInput)
	}
	return s.RequestTransition(ctx, motionID, actorID, next)
}

func (s *motionService) OpenVote(ctx context.Context, motionID, actorID string) (*repository.Motion, error) {
	return s.RequestTransition(ctx, motionID, actorID, types.StatusVoting)
}

func (s *motionService) ChallengeVeto(ctx context.Context, motionID, actorID string) (*repository.Motion, error) {
	return s.RequestTransition(ctx, motionID, actorID, types.StatusChallengingVeto)
}
