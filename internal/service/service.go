package service

import (
	"errors"
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/Marga-Ghale/ora-committee-backend/internal/metrics"
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"go.uber.org/zap"
)

// Error kinds. Operations wrap one of these with a specific message,
// e.g. fmt.Errorf("%w: insufficient role", ErrForbidden).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrUserExists         = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrLastOwner          = fmt.Errorf("%w: cannot remove or demote the last owner", ErrConflict)
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth       AuthService
	User       UserService
	Permission PermissionService
	Committee  CommitteeService
	Motion     MotionService
	Vote       VoteService
	Debate     DebateService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config  *config.Config
	Repos   *repository.Repositories
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewServices(deps *ServiceDeps) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	permissionService := NewPermissionService(deps.Repos.CommitteeRepo, logger)

	// The state machine is shared so motion and vote paths go through the
	// same transition code.
	sm := &stateMachine{
		motionRepo: deps.Repos.MotionRepo,
		metrics:    deps.Metrics,
		log:        logger.Named("motion"),
	}

	return &Services{
		Auth:       NewAuthService(deps.Config, deps.Repos.UserRepo),
		User:       NewUserService(deps.Repos.UserRepo),
		Permission: permissionService,
		Committee: NewCommitteeService(
			deps.Repos.CommitteeRepo,
			deps.Repos.UserRepo,
			permissionService,
			logger,
		),
		Motion: newMotionService(
			deps.Repos.MotionRepo,
			permissionService,
			sm,
		),
		Vote: newVoteService(
			deps.Repos.VoteRepo,
			deps.Repos.MotionRepo,
			deps.Repos.CommitteeRepo,
			permissionService,
			sm,
			deps.Metrics,
			logger,
		),
		Debate: NewDebateService(
			deps.Repos.DebateRepo,
			deps.Repos.MotionRepo,
			permissionService,
		),
	}
}
