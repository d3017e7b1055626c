package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/metrics"
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"go.uber.org/zap"
)

// ============================================
// Vote Service
// ============================================

// TallyView is a tally as seen by one member.
type TallyView struct {
	Tally
	MotionID string
	Status   string
	MyVote   *repository.Vote
}

type VoteService interface {
	// CastVote records the actor's vote. created is false when the actor
	// had already voted; the existing vote is returned unchanged.
	CastVote(ctx context.Context, motionID, actorID, position string) (vote *repository.Vote, created bool, err error)
	GetTally(ctx context.Context, motionID, actorID string) (*TallyView, error)
	// ResolveOpenMotions closes every open motion whose tally is decided
	// and returns how many it closed.
	ResolveOpenMotions(ctx context.Context) (int, error)
}

type voteService struct {
	voteRepo      repository.VoteRepository
	motionRepo    repository.MotionRepository
	committeeRepo repository.CommitteeRepository
	permissions   PermissionService
	sm            *stateMachine
	metrics       *metrics.Metrics
	log           *zap.Logger
}

func newVoteService(
	voteRepo repository.VoteRepository,
	motionRepo repository.MotionRepository,
	committeeRepo repository.CommitteeRepository,
	permissions PermissionService,
	sm *stateMachine,
	m *metrics.Metrics,
	logger *zap.Logger,
) *voteService {
	return &voteService{
		voteRepo:      voteRepo,
		motionRepo:    motionRepo,
		committeeRepo: committeeRepo,
		permissions:   permissions,
		sm:            sm,
		metrics:       m,
		log:           logger.Named("vote"),
	}
}

var errVotingNotOpen = fmt.Errorf("%w: voting not open", ErrForbidden)

func (s *voteService) findMotion(ctx context.Context, motionID string) (*repository.Motion, error) {
	motion, err := s.motionRepo.FindByID(ctx, motionID)
	if err != nil {
		return nil, err
	}
	if motion == nil {
		return nil, fmt.Errorf("%w: motion not found", ErrNotFound)
	}
	return motion, nil
}

func (s *voteService) CastVote(ctx context.Context, motionID, actorID, position string) (*repository.Vote, bool, error) {
	if !types.IsValidVotePosition(position) {
		return nil, false, fmt.Errorf("%w: position must be SUPPORT or OPPOSE", ErrInvalidInput)
	}
	motion, err := s.findMotion(ctx, motionID)
	if err != nil {
		return nil, false, err
	}
	member, err := s.permissions.Guard(ctx, actorID, motion.CommitteeID)
	if err != nil {
		return nil, false, err
	}
	if !types.IsVotingOpen(motion.Status) {
		return nil, false, errVotingNotOpen
	}
	if motion.Status == types.StatusChallengingVeto && member.Role == types.RoleChair {
		return nil, false, fmt.Errorf("%w: the chair does not vote on a veto challenge", ErrForbidden)
	}

	vote := &repository.Vote{
		MotionID: motion.ID,
		AuthorID: actorID,
		Position: position,
	}
	created, err := s.voteRepo.Cast(ctx, vote)
	if errors.Is(err, repository.ErrVotingClosed) {
		return nil, false, errVotingNotOpen
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to record vote: %w", err)
	}
	if !created {
		return vote, false, nil
	}

	s.metrics.VoteCast(position)

	// The vote is committed. A failed close is repaired by the sweep.
	if _, err := s.closeIfResolved(ctx, motion.ID); err != nil {
		s.log.Warn("close after vote failed",
			zap.String("motion_id", motion.ID),
			zap.Error(err),
		)
	}
	return vote, true, nil
}

// mode picks the tally mode for a motion. A PASSED motion counts as a
// challenge when its history went through CHALLENGING_VETO.
func (s *voteService) mode(ctx context.Context, m *repository.Motion, committee *repository.Committee) (string, error) {
	switch m.Status {
	case types.StatusChallengingVeto, types.StatusVetoConfirmed:
		return ModeVetoChallenge, nil
	case types.StatusPassed:
		events, err := s.motionRepo.FindEvents(ctx, m.ID)
		if err != nil {
			return "", err
		}
		for _, e := range events {
			if e.ToStatus == types.StatusChallengingVeto {
				return ModeVetoChallenge, nil
			}
		}
	}
	return committee.VotingThreshold, nil
}

func (s *voteService) evaluate(ctx context.Context, m *repository.Motion) (Tally, error) {
	committee, err := s.committeeRepo.FindByID(ctx, m.CommitteeID)
	if err != nil {
		return Tally{}, err
	}
	if committee == nil {
		return Tally{}, fmt.Errorf("%w: committee not found", ErrNotFound)
	}

	mode, err := s.mode(ctx, m, committee)
	if err != nil {
		return Tally{}, err
	}

	members, err := s.committeeRepo.FindMembers(ctx, m.CommitteeID)
	if err != nil {
		return Tally{}, err
	}
	votes, err := s.voteRepo.FindByMotion(ctx, m.ID)
	if err != nil {
		return Tally{}, err
	}

	electorate := Electorate(mode, members)
	return ComputeTally(mode, len(electorate), CountedVotes(votes, electorate)), nil
}

// closeIfResolved re-reads the motion and, if it is open and decided,
// asks the state machine for the system transition. Losing the
// compare-and-swap means someone else closed it, which is not an error.
func (s *voteService) closeIfResolved(ctx context.Context, motionID string) (bool, error) {
	motion, err := s.motionRepo.FindByID(ctx, motionID)
	if err != nil {
		return false, err
	}
	if motion == nil || !types.IsVotingOpen(motion.Status) {
		return false, nil
	}

	tally, err := s.evaluate(ctx, motion)
	if err != nil {
		return false, err
	}
	if !tally.Resolved() {
		return false, nil
	}

	_, err = s.sm.apply(ctx, motion, tally.Outcome, nil)
	if errors.Is(err, ErrForbidden) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *voteService) GetTally(ctx context.Context, motionID, actorID string) (*TallyView, error) {
	motion, err := s.findMotion(ctx, motionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.Guard(ctx, actorID, motion.CommitteeID); err != nil {
		return nil, err
	}

	tally, err := s.evaluate(ctx, motion)
	if err != nil {
		return nil, err
	}
	switch motion.Status {
	case types.StatusPassed, types.StatusRejected, types.StatusVetoConfirmed:
		// Membership may have changed since the close; the recorded
		// outcome stands.
		tally.Outcome = motion.Status
	case types.StatusVoting, types.StatusChallengingVeto:
	default:
		tally.Outcome = OutcomePending
	}

	myVote, err := s.voteRepo.FindByMotionAndAuthor(ctx, motion.ID, actorID)
	if err != nil {
		return nil, err
	}

	return &TallyView{
		Tally:    tally,
		MotionID: motion.ID,
		Status:   motion.Status,
		MyVote:   myVote,
	}, nil
}

func (s *voteService) ResolveOpenMotions(ctx context.Context) (int, error) {
	motions, err := s.motionRepo.FindByStatuses(ctx, types.OpenVotingStatuses)
	if err != nil {
		return 0, err
	}

	closed := 0
	var errs []error
	for _, m := range motions {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ok, err := s.closeIfResolved(ctx, m.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("motion %s: %w", m.ID, err))
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, errors.Join(errs...)
}
