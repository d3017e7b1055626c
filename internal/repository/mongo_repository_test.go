package repository

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestWithTxnFallback(t *testing.T) {
	standalone := mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}

	tests := []struct {
		name         string
		runErr       error
		wantErr      error
		wantFallback bool
	}{
		{"transaction commits", nil, nil, false},
		{"callback error is returned", ErrVotingClosed, ErrVotingClosed, false},
		{"standalone server falls back", standalone, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ranFn, ranFallback bool
			run := func(ctx context.Context, fn func(context.Context) error) error {
				if tt.runErr != nil {
					return tt.runErr
				}
				return fn(ctx)
			}
			err := withTxnFallback(context.Background(), run,
				func(context.Context) error { ranFn = true; return nil },
				func(context.Context) error { ranFallback = true; return nil },
			)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantFallback, ranFallback)
			assert.Equal(t, tt.runErr == nil, ranFn)
		})
	}
}

func TestWithTxnFallbackReturnsFallbackError(t *testing.T) {
	boom := errors.New("insert failed")
	run := func(context.Context, func(context.Context) error) error {
		return errors.New("session operations are not supported")
	}
	err := withTxnFallback(context.Background(), run,
		func(context.Context) error { return nil },
		func(context.Context) error { return boom },
	)
	assert.ErrorIs(t, err, boom)
}

func TestSortableIDsFollowCreationOrder(t *testing.T) {
	ids := make([]string, 500)
	for i := range ids {
		ids[i] = newSortableID()
	}
	assert.True(t, sort.StringsAreSorted(ids))

	parsed, err := uuid.Parse(ids[0])
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestOpenVotingFilter(t *testing.T) {
	f := openVotingFilter("m1")
	assert.Equal(t, "m1", f["_id"])
	assert.Contains(t, f, "status")
}
