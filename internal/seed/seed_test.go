package seed

import (
	"context"
	"testing"

	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewRepositories()
	services := service.NewServices(&service.ServiceDeps{
		Config: &config.Config{JWTSecret: "test", JWTExpiry: 1, RefreshExpiry: 1},
		Repos:  repos,
		Logger: zap.NewNop(),
	})

	require.NoError(t, SeedData(ctx, services, repos.UserRepo, zap.NewNop()))
	require.NoError(t, SeedData(ctx, services, repos.UserRepo, zap.NewNop()))

	marga, _, _, err := services.Auth.Login(ctx, "marga.ghale@oratechnologies.io", Password)
	require.NoError(t, err)

	committees, err := services.Committee.ListMine(ctx, marga.ID)
	require.NoError(t, err)
	require.Len(t, committees, 1)

	motions, err := services.Motion.ListByCommittee(ctx, committees[0].ID, marga.ID)
	require.NoError(t, err)

	statuses := map[string]bool{}
	for _, m := range motions {
		statuses[m.Status] = true
	}
	assert.Len(t, motions, 4)
	for _, want := range []string{types.StatusProposed, types.StatusDebate, types.StatusVoting, types.StatusVetoed} {
		assert.True(t, statuses[want], want)
	}
}
