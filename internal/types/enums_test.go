package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_AllowedEdges(t *testing.T) {
	allowed := map[string][]string{
		StatusProposed:        {StatusSeconded},
		StatusSeconded:        {StatusVetoed, StatusDebate},
		StatusDebate:          {StatusVoting},
		StatusVoting:          {StatusPassed, StatusRejected},
		StatusVetoed:          {StatusChallengingVeto},
		StatusChallengingVeto: {StatusPassed, StatusVetoConfirmed},
	}

	for _, from := range ValidMotionStatuses {
		for _, to := range ValidMotionStatuses {
			want := Contains(allowed[from], to)
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_NoSelfLoops(t *testing.T) {
	for _, s := range ValidMotionStatuses {
		assert.Falsef(t, CanTransition(s, s), "self loop on %s", s)
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("DRAFT", StatusSeconded))
	assert.False(t, CanTransition(StatusProposed, "DRAFT"))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusPassed))
	assert.True(t, IsTerminal(StatusRejected))
	assert.True(t, IsTerminal(StatusVetoConfirmed))
	assert.False(t, IsTerminal(StatusVetoed))
	assert.False(t, IsTerminal(StatusProposed))
}

func TestNextStatuses_ReturnsCopy(t *testing.T) {
	next := NextStatuses(StatusSeconded)
	next[0] = "MUTATED"
	assert.True(t, CanTransition(StatusSeconded, StatusVetoed))
}

func TestPositions(t *testing.T) {
	assert.True(t, IsValidVotePosition(PositionSupport))
	assert.False(t, IsValidVotePosition(PositionNeutral))
	assert.True(t, IsValidDebatePosition(PositionNeutral))
	assert.False(t, IsValidDebatePosition("ABSTAIN"))
}
