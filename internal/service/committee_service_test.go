package service

import (
	"testing"

	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommitteeMakesCreatorOwner(t *testing.T) {
	f := newFixture(t)
	creator := f.user("creator")

	c, err := f.svc.Committee.Create(f.ctx, creator, "Finance", nil, "")
	require.NoError(t, err)
	assert.Equal(t, types.ThresholdMajority, c.VotingThreshold)
	assert.Equal(t, types.RoleOwner, f.svc.Permission.ResolveRole(f.ctx, creator, c.ID))

	mine, err := f.svc.Committee.ListMine(f.ctx, creator)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, c.ID, mine[0].ID)
}

func TestCreateCommitteeValidation(t *testing.T) {
	f := newFixture(t)
	creator := f.user("creator")

	_, err := f.svc.Committee.Create(f.ctx, creator, "  ", nil, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Committee.Create(f.ctx, creator, "Finance", nil, "UNANIMOUS")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Committee.Create(f.ctx, "", "Finance", nil, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateCommitteeRequiresOwner(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 1)
	threshold := types.ThresholdSupermajority

	_, err := f.svc.Committee.Update(f.ctx, cu.id, cu.chair, nil, nil, &threshold)
	assert.ErrorIs(t, err, ErrForbidden)

	c, err := f.svc.Committee.Update(f.ctx, cu.id, cu.owner, nil, nil, &threshold)
	require.NoError(t, err)
	assert.Equal(t, types.ThresholdSupermajority, c.VotingThreshold)

	bad := "ALL"
	_, err = f.svc.Committee.Update(f.ctx, cu.id, cu.owner, nil, nil, &bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Committee.Update(f.ctx, "missing", cu.owner, nil, nil, &threshold)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 1)
	newcomer := f.user("newcomer")

	_, err := f.svc.Committee.AddMember(f.ctx, cu.id, cu.chair, newcomer, "", types.RoleMember)
	assert.ErrorIs(t, err, ErrForbidden)

	m, err := f.svc.Committee.AddMember(f.ctx, cu.id, cu.owner, "", "newcomer", "")
	require.NoError(t, err)
	assert.Equal(t, newcomer, m.UserID)
	assert.Equal(t, types.RoleMember, m.Role)

	_, err = f.svc.Committee.AddMember(f.ctx, cu.id, cu.owner, newcomer, "", types.RoleChair)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Committee.AddMember(f.ctx, cu.id, cu.owner, "", "ghost", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Committee.AddMember(f.ctx, cu.id, cu.owner, newcomer, "", "PRESIDENT")
	assert.ErrorIs(t, err, ErrInvalidInput)

	members, err := f.svc.Committee.ListMembers(f.ctx, cu.id, newcomer)
	require.NoError(t, err)
	assert.Len(t, members, 4)
}

func TestLastOwnerIsProtected(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 1)

	err := f.svc.Committee.UpdateMemberRole(f.ctx, cu.id, cu.owner, cu.owner, types.RoleMember)
	assert.ErrorIs(t, err, ErrLastOwner)
	assert.ErrorIs(t, err, ErrConflict)

	err = f.svc.Committee.RemoveMember(f.ctx, cu.id, cu.owner, cu.owner)
	assert.ErrorIs(t, err, ErrLastOwner)

	// With a second owner the first may step down.
	require.NoError(t, f.svc.Committee.UpdateMemberRole(f.ctx, cu.id, cu.owner, cu.members[0], types.RoleOwner))
	require.NoError(t, f.svc.Committee.UpdateMemberRole(f.ctx, cu.id, cu.owner, cu.owner, types.RoleMember))
	assert.Equal(t, types.RoleMember, f.svc.Permission.ResolveRole(f.ctx, cu.owner, cu.id))
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	cu := f.committeeWith(types.ThresholdMajority, 2)

	err := f.svc.Committee.RemoveMember(f.ctx, cu.id, cu.members[0], cu.members[1])
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.Committee.RemoveMember(f.ctx, cu.id, cu.members[0], cu.members[0]))
	assert.Equal(t, "", f.svc.Permission.ResolveRole(f.ctx, cu.members[0], cu.id))

	require.NoError(t, f.svc.Committee.RemoveMember(f.ctx, cu.id, cu.owner, cu.members[1]))

	err = f.svc.Committee.RemoveMember(f.ctx, cu.id, cu.owner, cu.members[1])
	assert.ErrorIs(t, err, ErrNotFound)
}
