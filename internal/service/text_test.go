package service

import (
	"testing"

	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Raise dues", "Raise dues"},
		{"trimmed", "  Raise dues \n", "Raise dues"},
		{"tags stripped", "<b>Raise</b> <i>dues</i>", "Raise dues"},
		{"script dropped", "<script>alert(1)</script>ok", "ok"},
		{"ampersand kept", "R&D budget", "R&D budget"},
		{"comparison and quotes kept", `costs < benefits & the chair's "estimate"`, `costs < benefits & the chair's "estimate"`},
		{"only tags", "<b></b>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}
}

func TestCleanOptionalText(t *testing.T) {
	assert.Nil(t, cleanOptionalText(nil))

	empty := "  <p></p> "
	assert.Nil(t, cleanOptionalText(&empty))

	s := "Q&A <em>session</em>"
	got := cleanOptionalText(&s)
	require.NotNil(t, got)
	assert.Equal(t, "Q&A session", *got)
}

func TestStoredTextKeepsPunctuation(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 2)

	desc := "Costs > 5k & rising"
	m, err := f.svc.Motion.Propose(f.ctx, cu.id, cu.members[0], "R&D budget", &desc)
	require.NoError(t, err)
	assert.Equal(t, "R&D budget", m.Title)
	require.NotNil(t, m.Description)
	assert.Equal(t, "Costs > 5k & rising", *m.Description)

	stored, err := f.repos.MotionRepo.FindByID(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "R&D budget", stored.Title)

	debating := f.motionIn(cu, types.StatusDebate)
	content := `The chair's "estimate" says costs < benefits & risks`
	entry, err := f.svc.Debate.CreateEntry(f.ctx, debating.ID, cu.members[1], types.PositionOppose, content)
	require.NoError(t, err)
	assert.Equal(t, content, entry.Content)
}
