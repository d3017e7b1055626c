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

// stateMachine is the only code that writes a motion's status. Callers
// authorize first; apply enforces the transition table and the
// compare-and-swap on the observed status.
type stateMachine struct {
	motionRepo repository.MotionRepository
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// apply moves m from its observed status to next. actorID is nil for
// system transitions.
func (sm *stateMachine) apply(ctx context.Context, m *repository.Motion, next string, actorID *string) (*repository.Motion, error) {
	if !types.CanTransition(m.Status, next) {
		return nil, fmt.Errorf("%w: illegal transition from %s to %s", ErrForbidden, m.Status, next)
	}

	updated, err := sm.motionRepo.UpdateStatus(ctx, m.ID, m.Status, next, actorID)
	if errors.Is(err, repository.ErrStatusConflict) {
		return nil, fmt.Errorf("%w: illegal transition, motion is no longer %s", ErrForbidden, m.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update motion status: %w", err)
	}

	sm.metrics.MotionTransition(m.Status, next)
	fields := []zap.Field{
		zap.String("motion_id", m.ID),
		zap.String("from", m.Status),
		zap.String("to", next),
	}
	if actorID != nil {
		fields = append(fields, zap.String("actor_id", *actorID))
	}
	sm.log.Info("motion transitioned", fields...)
	return updated, nil
}
