package service

import (
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/shopspring/decimal"
)

// Tally modes. The first two are committee policies, the third applies
// while a veto is being challenged.
const (
	ModeMajority      = types.ThresholdMajority
	ModeSupermajority = types.ThresholdSupermajority
	ModeVetoChallenge = "VETO_CHALLENGE"
)

// Tally outcomes
const (
	OutcomePending       = "PENDING"
	OutcomePassed        = types.StatusPassed
	OutcomeRejected      = types.StatusRejected
	OutcomeVetoConfirmed = types.StatusVetoConfirmed
)

const ratioPlaces = 4

// Threshold returns the number of SUPPORT votes needed to pass. It is
// never below 1.
func Threshold(mode string, eligible int) int {
	var t int
	switch mode {
	case ModeSupermajority, ModeVetoChallenge:
		t = (2*eligible + 2) / 3 // ceil(2n/3)
	default:
		t = eligible/2 + 1
	}
	if t < 1 {
		t = 1
	}
	return t
}

type Tally struct {
	Mode         string
	Eligible     int
	Threshold    int
	Support      int
	Oppose       int
	Cast         int
	Remaining    int
	SupportRatio decimal.Decimal
	Progress     decimal.Decimal
	Outcome      string
}

// Electorate returns the user ids entitled to vote in mode. The chair is
// outside the electorate of a veto challenge.
func Electorate(mode string, members []*repository.CommitteeMember) map[string]struct{} {
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		if mode == ModeVetoChallenge && m.Role == types.RoleChair {
			continue
		}
		out[m.UserID] = struct{}{}
	}
	return out
}

// CountedVotes drops votes whose author is no longer in the electorate.
func CountedVotes(votes []*repository.Vote, electorate map[string]struct{}) []*repository.Vote {
	counted := make([]*repository.Vote, 0, len(votes))
	for _, v := range votes {
		if _, ok := electorate[v.AuthorID]; ok {
			counted = append(counted, v)
		}
	}
	return counted
}

// ComputeTally counts votes against the threshold for the mode.
func ComputeTally(mode string, eligible int, votes []*repository.Vote) Tally {
	t := Tally{
		Mode:      mode,
		Eligible:  eligible,
		Threshold: Threshold(mode, eligible),
	}
	for _, v := range votes {
		switch v.Position {
		case types.PositionSupport:
			t.Support++
		case types.PositionOppose:
			t.Oppose++
		}
	}
	t.Cast = t.Support + t.Oppose
	if r := eligible - t.Cast; r > 0 {
		t.Remaining = r
	}

	t.SupportRatio = decimal.Zero
	if t.Cast > 0 {
		t.SupportRatio = decimal.NewFromInt(int64(t.Support)).
			DivRound(decimal.NewFromInt(int64(t.Cast)), ratioPlaces)
	}
	t.Progress = decimal.Min(
		decimal.NewFromInt(int64(t.Support)).DivRound(decimal.NewFromInt(int64(t.Threshold)), ratioPlaces),
		decimal.NewFromInt(1),
	)

	switch {
	case t.Support >= t.Threshold:
		t.Outcome = OutcomePassed
	case t.Support+t.Remaining < t.Threshold:
		if mode == ModeVetoChallenge {
			t.Outcome = OutcomeVetoConfirmed
		} else {
			t.Outcome = OutcomeRejected
		}
	default:
		t.Outcome = OutcomePending
	}
	return t
}

// Resolved reports whether the tally has a final outcome.
func (t Tally) Resolved() bool {
	return t.Outcome != OutcomePending
}
