package service

import (
	"sync"
	"testing"

	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVoteValidation(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 3)
	voting := f.motionIn(cu, types.StatusVoting)
	debate := f.motionIn(cu, types.StatusDebate)
	outsider := f.user("outsider")

	_, _, err := f.svc.Vote.CastVote(f.ctx, voting.ID, cu.members[0], types.PositionNeutral)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = f.svc.Vote.CastVote(f.ctx, "missing", cu.members[0], types.PositionSupport)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = f.svc.Vote.CastVote(f.ctx, voting.ID, outsider, types.PositionSupport)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = f.svc.Vote.CastVote(f.ctx, debate.ID, cu.members[0], types.PositionSupport)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "voting not open")
}

func TestCastVoteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 5)
	m := f.motionIn(cu, types.StatusVoting)

	first, created, err := f.svc.Vote.CastVote(f.ctx, m.ID, cu.members[0], types.PositionSupport)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.svc.Vote.CastVote(f.ctx, m.ID, cu.members[0], types.PositionOppose)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, types.PositionSupport, again.Position)

	tally, err := f.svc.Vote.GetTally(f.ctx, m.ID, cu.members[0])
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Cast)
	require.NotNil(t, tally.MyVote)
	assert.Equal(t, first.ID, tally.MyVote.ID)
}

// Five members under MAJORITY: three SUPPORT votes pass the motion.
func TestMajorityPassesEndToEnd(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 3) // owner + chair + 3

	m := f.motionIn(cu, types.StatusVoting)

	tally, err := f.svc.Vote.GetTally(f.ctx, m.ID, cu.owner)
	require.NoError(t, err)
	assert.Equal(t, 5, tally.Eligible)
	assert.Equal(t, 3, tally.Threshold)
	assert.Nil(t, tally.MyVote)

	for _, voter := range []string{cu.members[0], cu.members[1]} {
		_, _, err := f.svc.Vote.CastVote(f.ctx, m.ID, voter, types.PositionSupport)
		require.NoError(t, err)
	}
	assert.Equal(t, types.StatusVoting, f.status(m.ID))

	_, _, err = f.svc.Vote.CastVote(f.ctx, m.ID, cu.chair, types.PositionSupport)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPassed, f.status(m.ID))

	_, _, err = f.svc.Vote.CastVote(f.ctx, m.ID, cu.members[2], types.PositionOppose)
	assert.ErrorIs(t, err, ErrForbidden)

	tally, err = f.svc.Vote.GetTally(f.ctx, m.ID, cu.members[2])
	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, tally.Outcome)
	assert.Equal(t, 3, tally.Support)

	events, err := f.svc.Motion.History(f.ctx, m.ID, cu.owner)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, types.StatusPassed, last.ToStatus)
	assert.Nil(t, last.ActorID)
}

func TestRejectedWhenThresholdUnreachable(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 3)
	m := f.motionIn(cu, types.StatusVoting)

	for i, voter := range []string{cu.members[0], cu.members[1], cu.members[2]} {
		_, _, err := f.svc.Vote.CastVote(f.ctx, m.ID, voter, types.PositionOppose)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, types.StatusVoting, f.status(m.ID))
		}
	}
	assert.Equal(t, types.StatusRejected, f.status(m.ID))
}

// A member who leaves mid-vote takes their ballot with them.
func TestDepartedMemberVoteNotCounted(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 3) // owner + chair + 3
	m := f.motionIn(cu, types.StatusVoting)

	for _, voter := range []string{cu.members[0], cu.members[1]} {
		_, _, err := f.svc.Vote.CastVote(f.ctx, m.ID, voter, types.PositionSupport)
		require.NoError(t, err)
	}
	require.NoError(t, f.svc.Committee.RemoveMember(f.ctx, cu.id, cu.members[1], cu.members[1]))

	_, _, err := f.svc.Vote.CastVote(f.ctx, m.ID, cu.owner, types.PositionSupport)
	require.NoError(t, err)
	assert.Equal(t, types.StatusVoting, f.status(m.ID))

	tally, err := f.svc.Vote.GetTally(f.ctx, m.ID, cu.owner)
	require.NoError(t, err)
	assert.Equal(t, 4, tally.Eligible)
	assert.Equal(t, 3, tally.Threshold)
	assert.Equal(t, 2, tally.Support)
	assert.Equal(t, 2, tally.Cast)
	assert.Equal(t, 2, tally.Remaining)
	assert.Equal(t, OutcomePending, tally.Outcome)

	_, _, err = f.svc.Vote.CastVote(f.ctx, m.ID, cu.members[2], types.PositionSupport)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPassed, f.status(m.ID))
}

func TestSupermajorityThreshold(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdSupermajority, 7) // 9 members
	m := f.motionIn(cu, types.StatusVoting)

	tally, err := f.svc.Vote.GetTally(f.ctx, m.ID, cu.owner)
	require.NoError(t, err)
	assert.Equal(t, ModeSupermajority, tally.Mode)
	assert.Equal(t, 9, tally.Eligible)
	assert.Equal(t, 6, tally.Threshold)

	for _, voter := range cu.members[:5] {
		_, _, err := f.svc.Vote.CastVote(f.ctx, m.ID, voter, types.PositionSupport)
		require.NoError(t, err)
	}
	assert.Equal(t, types.StatusVoting, f.status(m.ID))

	_, _, err = f.svc.Vote.CastVote(f.ctx, m.ID, cu.members[5], types.PositionSupport)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPassed, f.status(m.ID))
}

// Ten members including the chair: nine may vote and six overrule the veto.
func TestVetoChallengeOverruled(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 8)
	m := f.motionIn(cu, types.StatusChallengingVeto)

	tally, err := f.svc.Vote.GetTally(f.ctx, m.ID, cu.chair)
	require.NoError(t, err)
	assert.Equal(t, ModeVetoChallenge, tally.Mode)
	assert.Equal(t, 9, tally.Eligible)
	assert.Equal(t, 6, tally.Threshold)

	_, _, err = f.svc.Vote.CastVote(f.ctx, m.ID, cu.chair, types.PositionOppose)
	assert.ErrorIs(t, err, ErrForbidden)

	voters := append([]string{cu.owner}, cu.members[:5]...)
	for _, voter := range voters {
		_, _, err := f.svc.Vote.CastVote(f.ctx, m.ID, voter, types.PositionSupport)
		require.NoError(t, err)
	}
	assert.Equal(t, types.StatusPassed, f.status(m.ID))

	tally, err = f.svc.Vote.GetTally(f.ctx, m.ID, cu.owner)
	require.NoError(t, err)
	assert.Equal(t, ModeVetoChallenge, tally.Mode)
	assert.Equal(t, OutcomePassed, tally.Outcome)
}

func TestVetoChallengeConfirmed(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 8)
	m := f.motionIn(cu, types.StatusChallengingVeto)

	// 9 eligible, threshold 6: four OPPOSE leave at most 5 SUPPORT.
	for _, voter := range cu.members[:4] {
		_, _, err := f.svc.Vote.CastVote(f.ctx, m.ID, voter, types.PositionOppose)
		require.NoError(t, err)
	}
	assert.Equal(t, types.StatusVetoConfirmed, f.status(m.ID))
}

func TestConcurrentVotesCloseOnce(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 18) // 20 members, threshold 11
	m := f.motionIn(cu, types.StatusVoting)

	voters := append([]string{cu.owner, cu.chair}, cu.members...)
	var wg sync.WaitGroup
	for _, voter := range voters {
		wg.Add(1)
		go func(voter string) {
			defer wg.Done()
			_, _, err := f.svc.Vote.CastVote(f.ctx, m.ID, voter, types.PositionSupport)
			if err != nil {
				// Votes arriving after the close are refused.
				assert.ErrorIs(t, err, ErrForbidden)
			}
		}(voter)
	}
	wg.Wait()

	assert.Equal(t, types.StatusPassed, f.status(m.ID))

	events, err := f.svc.Motion.History(f.ctx, m.ID, cu.owner)
	require.NoError(t, err)
	closes := 0
	for _, e := range events {
		if e.FromStatus == types.StatusVoting {
			closes++
		}
	}
	assert.Equal(t, 1, closes)

	tally, err := f.svc.Vote.GetTally(f.ctx, m.ID, cu.owner)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, tally.Support, 11)
}

func TestResolveOpenMotionsClosesDecided(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 3) // 5 members, threshold 3
	decided := f.motionIn(cu, types.StatusVoting)
	open := f.motionIn(cu, types.StatusVoting)

	for _, voter := range []string{cu.members[0], cu.members[1]} {
		_, _, err := f.svc.Vote.CastVote(f.ctx, decided.ID, voter, types.PositionSupport)
		require.NoError(t, err)
	}
	_, _, err := f.svc.Vote.CastVote(f.ctx, open.ID, cu.members[0], types.PositionSupport)
	require.NoError(t, err)

	// Two members leave: 3 eligible, threshold 2, already met by decided.
	require.NoError(t, f.svc.Committee.RemoveMember(f.ctx, cu.id, cu.owner, cu.members[2]))
	require.NoError(t, f.svc.Committee.RemoveMember(f.ctx, cu.id, cu.chair, cu.chair))
	assert.Equal(t, types.StatusVoting, f.status(decided.ID))

	closed, err := f.svc.Vote.ResolveOpenMotions(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, types.StatusPassed, f.status(decided.ID))
	assert.Equal(t, types.StatusVoting, f.status(open.ID))

	closed, err = f.svc.Vote.ResolveOpenMotions(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}
