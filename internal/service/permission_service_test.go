package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveRole(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 1)
	outsider := f.user("outsider")

	assert.Equal(t, types.RoleOwner, f.svc.Permission.ResolveRole(f.ctx, cu.owner, cu.id))
	assert.Equal(t, types.RoleChair, f.svc.Permission.ResolveRole(f.ctx, cu.chair, cu.id))
	assert.Equal(t, types.RoleMember, f.svc.Permission.ResolveRole(f.ctx, cu.members[0], cu.id))
	assert.Equal(t, "", f.svc.Permission.ResolveRole(f.ctx, outsider, cu.id))
	assert.Equal(t, "", f.svc.Permission.ResolveRole(f.ctx, cu.owner, "missing"))
	assert.Equal(t, "", f.svc.Permission.ResolveRole(f.ctx, "", cu.id))
}

func TestGuard(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 1)
	outsider := f.user("outsider")

	tests := []struct {
		name     string
		user     string
		cid      string
		allowed  []string
		wantErr  error
		contains string
	}{
		{"no actor", "", cu.id, nil, ErrUnauthorized, ""},
		{"no committee", cu.owner, "", nil, ErrInvalidInput, ""},
		{"not a member", outsider, cu.id, nil, ErrForbidden, "membership required"},
		{"wrong role", cu.members[0], cu.id, []string{types.RoleChair}, ErrForbidden, "insufficient role"},
		{"owner is not chair", cu.owner, cu.id, []string{types.RoleChair}, ErrForbidden, "insufficient role"},
		{"any member", cu.members[0], cu.id, nil, nil, ""},
		{"one of several", cu.chair, cu.id, []string{types.RoleOwner, types.RoleChair}, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member, err := f.svc.Permission.Guard(f.ctx, tt.user, tt.cid, tt.allowed...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, member)
				if tt.contains != "" {
					assert.Contains(t, err.Error(), tt.contains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.user, member.UserID)
		})
	}
}

type failingCommitteeRepo struct {
	repository.CommitteeRepository
}

func (failingCommitteeRepo) FindMember(context.Context, string, string) (*repository.CommitteeMember, error) {
	return nil, errors.New("connection reset")
}

func TestLookupFailureResolvesToNoRole(t *testing.T) {
	p := NewPermissionService(failingCommitteeRepo{}, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, "", p.ResolveRole(ctx, "u1", "c1"))

	_, err := p.Guard(ctx, "u1", "c1")
	require.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "membership required")
}
