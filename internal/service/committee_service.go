package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"go.uber.org/zap"
)

// ============================================
// Committee Service
// ============================================

type CommitteeService interface {
	Create(ctx context.Context, creatorID, name string, description *string, votingThreshold string) (*repository.Committee, error)
	Get(ctx context.Context, id, userID string) (*repository.Committee, error)
	ListMine(ctx context.Context, userID string) ([]*repository.Committee, error)
	Update(ctx context.Context, id, userID string, name, description, votingThreshold *string) (*repository.Committee, error)

	ListMembers(ctx context.Context, id, userID string) ([]*repository.CommitteeMember, error)
	// AddMember adds the user identified by targetUserID, or by username
	// when targetUserID is empty.
	AddMember(ctx context.Context, id, actorID, targetUserID, username, role string) (*repository.CommitteeMember, error)
	UpdateMemberRole(ctx context.Context, id, actorID, targetUserID, role string) error
	RemoveMember(ctx context.Context, id, actorID, targetUserID string) error
}

type committeeService struct {
	committeeRepo repository.CommitteeRepository
	userRepo      repository.UserRepository
	permissions   PermissionService
	log           *zap.Logger
}

func NewCommitteeService(
	committeeRepo repository.CommitteeRepository,
	userRepo repository.UserRepository,
	permissions PermissionService,
	logger *zap.Logger,
) CommitteeService {
	return &committeeService{
		committeeRepo: committeeRepo,
		userRepo:      userRepo,
		permissions:   permissions,
		log:           logger.Named("committee"),
	}
}

func (s *committeeService) Create(ctx context.Context, creatorID, name string, description *string, votingThreshold string) (*repository.Committee, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("%w: authentication required", ErrUnauthorized)
	}
	name = cleanText(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if votingThreshold == "" {
		votingThreshold = types.ThresholdMajority
	}
	if !types.IsValidThreshold(votingThreshold) {
		return nil, fmt.Errorf("%w: voting threshold must be MAJORITY or SUPERMAJORITY", ErrInvalidInput)
	}

	committee := &repository.Committee{
		Name:            name,
		Description:     cleanOptionalText(description),
		VotingThreshold: votingThreshold,
		CreatedBy:       creatorID,
	}
	if err := s.committeeRepo.CreateWithOwner(ctx, committee, creatorID); err != nil {
		return nil, fmt.Errorf("failed to create committee: %w", err)
	}

	s.log.Info("committee created",
		zap.String("committee_id", committee.ID),
		zap.String("creator_id", creatorID),
	)
	return committee, nil
}

func (s *committeeService) find(ctx context.Context, id string) (*repository.Committee, error) {
	committee, err := s.committeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if committee == nil {
		return nil, fmt.Errorf("%w: committee not found", ErrNotFound)
	}
	return committee, nil
}

func (s *committeeService) Get(ctx context.Context, id, userID string) (*repository.Committee, error) {
	committee, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Guard(ctx, userID, id); err != nil {
		return nil, err
	}
	return committee, nil
}

func (s *committeeService) ListMine(ctx context.Context, userID string) ([]*repository.Committee, error) {
	return s.committeeRepo.FindByUserID(ctx, userID)
}

func (s *committeeService) Update(ctx context.Context, id, userID string, name, description, votingThreshold *string) (*repository.Committee, error) {
	committee, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Guard(ctx, userID, id, types.RoleOwner); err != nil {
		return nil, err
	}

	if name != nil {
		n := cleanText(*name)
		if n == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		committee.Name = n
	}
	if description != nil {
		committee.Description = cleanOptionalText(description)
	}
	if votingThreshold != nil {
		if !types.IsValidThreshold(*votingThreshold) {
			return nil, fmt.Errorf("%w: voting threshold must be MAJORITY or SUPERMAJORITY", ErrInvalidInput)
		}
		committee.VotingThreshold = *votingThreshold
	}

	if err := s.committeeRepo.Update(ctx, committee); err != nil {
		return nil, err
	}
	return committee, nil
}

func (s *committeeService) ListMembers(ctx context.Context, id, userID string) ([]*repository.CommitteeMember, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.permissions.Guard(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.committeeRepo.FindMembers(ctx, id)
}

func (s *committeeService) AddMember(ctx context.Context, id, actorID, targetUserID, username, role string) (*repository.CommitteeMember, error) {
	if role == "" {
		role = types.RoleMember
	}
	if !types.IsValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role", ErrInvalidInput)
	}
	if targetUserID == "" && username == "" {
		return nil, fmt.Errorf("%w: userId or username is required", ErrInvalidInput)
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.permissions.Guard(ctx, actorID, id, types.RoleOwner); err != nil {
		return nil, err
	}

	var (
		user *repository.User
		err  error
	)
	if targetUserID != "" {
		user, err = s.userRepo.FindByID(ctx, targetUserID)
	} else {
		user, err = s.userRepo.FindByUsername(ctx, username)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}

	member := &repository.CommitteeMember{
		CommitteeID: id,
		UserID:      user.ID,
		Role:        role,
	}
	if err := s.committeeRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user is already a member", ErrConflict)
		}
		return nil, err
	}
	member.User = user

	s.log.Info("member added",
		zap.String("committee_id", id),
		zap.String("user_id", user.ID),
		zap.String("role", role),
	)
	return member, nil
}

func (s *committeeService) target(ctx context.Context, id, userID string) (*repository.CommitteeMember, error) {
	member, err := s.committeeRepo.FindMember(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("%w: member not found", ErrNotFound)
	}
	return member, nil
}

func (s *committeeService) isLastOwner(ctx context.Context, id string, member *repository.CommitteeMember) (bool, error) {
	if member.Role != types.RoleOwner {
		return false, nil
	}
	owners, err := s.committeeRepo.CountByRole(ctx, id, types.RoleOwner)
	if err != nil {
		return false, err
	}
	return owners <= 1, nil
}

func (s *committeeService) UpdateMemberRole(ctx context.Context, id, actorID, targetUserID, role string) error {
	if !types.IsValidRole(role) {
		return fmt.Errorf("%w: invalid role", ErrInvalidInput)
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if _, err := s.permissions.Guard(ctx, actorID, id, types.RoleOwner); err != nil {
		return err
	}
	member, err := s.target(ctx, id, targetUserID)
	if err != nil {
		return err
	}
	if member.Role == role {
		return nil
	}
	if last, err := s.isLastOwner(ctx, id, member); err != nil {
		return err
	} else if last {
		return ErrLastOwner
	}

	return s.committeeRepo.UpdateMemberRole(ctx, id, targetUserID, role)
}

func (s *committeeService) RemoveMember(ctx context.Context, id, actorID, targetUserID string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	// Members may leave on their own; removing someone else takes OWNER.
	if actorID == targetUserID {
		if _, err := s.permissions.Guard(ctx, actorID, id); err != nil {
			return err
		}
	} else if _, err := s.permissions.Guard(ctx, actorID, id, types.RoleOwner); err != nil {
		return err
	}

	member, err := s.target(ctx, id, targetUserID)
	if err != nil {
		return err
	}
	if last, err := s.isLastOwner(ctx, id, member); err != nil {
		return err
	} else if last {
		return ErrLastOwner
	}

	if err := s.committeeRepo.RemoveMember(ctx, id, targetUserID); err != nil {
		return err
	}
	s.log.Info("member removed",
		zap.String("committee_id", id),
		zap.String("user_id", targetUserID),
		zap.String("by", actorID),
	)
	return nil
}
