package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	repos *repository.Repositories
	svc   *Services
	n     int
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     1,
		RefreshExpiry: 1,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.NewRepositories()
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		repos: repos,
		svc: NewServices(&ServiceDeps{
			Config: testConfig(),
			Repos:  repos,
			Logger: zap.NewNop(),
		}),
	}
}

func (f *fixture) user(name string) string {
	f.t.Helper()
	u := &repository.User{
		Username: name,
		Email:    name + "@example.com",
		Name:     name,
		Password: "hash",
	}
	require.NoError(f.t, f.repos.UserRepo.Create(f.ctx, u))
	return u.ID
}

// committeeWith creates a committee owned by a fresh OWNER, one CHAIR and
// the given number of plain members.
type committeeUsers struct {
	id      string
	owner   string
	chair   string
	members []string
}

func (f *fixture) committeeWith(threshold string, members int) committeeUsers {
	f.t.Helper()
	f.n++
	prefix := fmt.Sprintf("c%d", f.n)

	cu := committeeUsers{owner: f.user(prefix + "-owner"), chair: f.user(prefix + "-chair")}
	c, err := f.svc.Committee.Create(f.ctx, cu.owner, "Committee "+prefix, nil, threshold)
	require.NoError(f.t, err)
	cu.id = c.ID

	f.addMember(cu.id, cu.chair, types.RoleChair)
	for i := 0; i < members; i++ {
		id := f.user(fmt.Sprintf("%s-m%d", prefix, i))
		f.addMember(cu.id, id, types.RoleMember)
		cu.members = append(cu.members, id)
	}
	return cu
}

func (f *fixture) addMember(committeeID, userID, role string) {
	f.t.Helper()
	require.NoError(f.t, f.repos.CommitteeRepo.AddMember(f.ctx, &repository.CommitteeMember{
		CommitteeID: committeeID,
		UserID:      userID,
		Role:        role,
	}))
}

func (f *fixture) propose(cu committeeUsers, author string) *repository.Motion {
	f.t.Helper()
	m, err := f.svc.Motion.Propose(f.ctx, cu.id, author, "Adopt the budget", nil)
	require.NoError(f.t, err)
	return m
}

// motionIn drives a new motion to the requested status through the
// public operations.
func (f *fixture) motionIn(cu committeeUsers, status string) *repository.Motion {
	f.t.Helper()
	m := f.propose(cu, cu.members[0])
	steps := map[string][]func() (*repository.Motion, error){
		types.StatusProposed: nil,
		types.StatusSeconded: {
			func() (*repository.Motion, error) { return f.svc.Motion.Second(f.ctx, m.ID, cu.owner) },
		},
		types.StatusDebate: {
			func() (*repository.Motion, error) { return f.svc.Motion.Second(f.ctx, m.ID, cu.owner) },
			func() (*repository.Motion, error) {
				return f.svc.Motion.ChairDecision(f.ctx, m.ID, cu.chair, types.ActionApprove)
			},
		},
		types.StatusVoting: {
			func() (*repository.Motion, error) { return f.svc.Motion.Second(f.ctx, m.ID, cu.owner) },
			func() (*repository.Motion, error) {
				return f.svc.Motion.ChairDecision(f.ctx, m.ID, cu.chair, types.ActionApprove)
			},
			func() (*repository.Motion, error) { return f.svc.Motion.OpenVote(f.ctx, m.ID, cu.chair) },
		},
		types.StatusVetoed: {
			func() (*repository.Motion, error) { return f.svc.Motion.Second(f.ctx, m.ID, cu.owner) },
			func() (*repository.Motion, error) {
				return f.svc.Motion.ChairDecision(f.ctx, m.ID, cu.chair, types.ActionVeto)
			},
		},
		types.StatusChallengingVeto: {
			func() (*repository.Motion, error) { return f.svc.Motion.Second(f.ctx, m.ID, cu.owner) },
			func() (*repository.Motion, error) {
				return f.svc.Motion.ChairDecision(f.ctx, m.ID, cu.chair, types.ActionVeto)
			},
			func() (*repository.Motion, error) { return f.svc.Motion.ChallengeVeto(f.ctx, m.ID, cu.owner) },
		},
	}
	path, ok := steps[status]
	require.True(f.t, ok, "no path to %s", status)
	for _, step := range path {
		var err error
		m, err = step()
		require.NoError(f.t, err)
	}
	require.Equal(f.t, status, m.Status)
	return m
}

func (f *fixture) status(motionID string) string {
	f.t.Helper()
	m, err := f.repos.MotionRepo.FindByID(f.ctx, motionID)
	require.NoError(f.t, err)
	require.NotNil(f.t, m)
	return m.Status
}
