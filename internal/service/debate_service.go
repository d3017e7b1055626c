package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
)

// ============================================
// Debate Service
// ============================================

type DebateService interface {
	CreateEntry(ctx context.Context, motionID, actorID, position, content string) (*repository.DebateEntry, error)
	// ListEntries returns the motion's debate, newest first.
	ListEntries(ctx context.Context, motionID, actorID string) ([]*repository.DebateEntry, error)
}

type debateService struct {
	debateRepo  repository.DebateRepository
	motionRepo  repository.MotionRepository
	permissions PermissionService
}

func NewDebateService(debateRepo repository.DebateRepository, motionRepo repository.MotionRepository, permissions PermissionService) DebateService {
	return &debateService{
		debateRepo:  debateRepo,
		motionRepo:  motionRepo,
		permissions: permissions,
	}
}

var errDebateNotOpen = fmt.Errorf("%w: debate not open", ErrForbidden)

func (s *debateService) motion(ctx context.Context, motionID, actorID string) (*repository.Motion, error) {
	motion, err := s.motionRepo.FindByID(ctx, motionID)
	if err != nil {
		return nil, err
	}
	if motion == nil {
		return nil, fmt.Errorf("%w: motion not found", ErrNotFound)
	}
	if _, err := s.permissions.Guard(ctx, actorID, motion.CommitteeID); err != nil {
		return nil, err
	}
	return motion, nil
}

func (s *debateService) CreateEntry(ctx context.Context, motionID, actorID, position, content string) (*repository.DebateEntry, error) {
	if !types.IsValidDebatePosition(position) {
		return nil, fmt.Errorf("%w: position must be SUPPORT, OPPOSE or NEUTRAL", ErrInvalidInput)
	}
	content = cleanText(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	motion, err := s.motion(ctx, motionID, actorID)
	if err != nil {
		return nil, err
	}
	if motion.Status != types.DebateStatus {
		return nil, errDebateNotOpen
	}

	entry := &repository.DebateEntry{
		MotionID: motion.ID,
		AuthorID: actorID,
		Position: position,
		Content:  content,
	}
	// The repository re-checks the status in the insert itself.
	if err := s.debateRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDebateClosed) {
			return nil, errDebateNotOpen
		}
		return nil, fmt.Errorf("failed to create debate entry: %w", err)
	}
	return entry, nil
}

func (s *debateService) ListEntries(ctx context.Context, motionID, actorID string) ([]*repository.DebateEntry, error) {
	motion, err := s.motion(ctx, motionID, actorID)
	if err != nil {
		return nil, err
	}
	return s.debateRepo.FindByMotion(ctx, motion.ID)
}
