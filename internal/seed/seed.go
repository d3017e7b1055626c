// internal/seed/seed.go
package seed

import (
	"context"
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"go.uber.org/zap"
)

// Password shared by every seeded account.
const Password = "password123"

type seedUser struct {
	name, username, email string
}

var users = []seedUser{
	{"Marga Ghale", "marga", "marga.ghale@oratechnologies.io"},   // owner
	{"Bipin Dhimal", "bipin", "bipin.dhimal@oratechnologies.io"}, // chair
	{"Kritim Kafle", "kritim", "kritim.kafle@oratechnologies.io"},
	{"Prerak Khadka", "prerak", "prerak.khadka@oratechnologies.io"},
}

// SeedData creates a demo committee with motions at several lifecycle
// stages. It does nothing if the first seed user already exists.
func SeedData(ctx context.Context, services *service.Services, userRepo repository.UserRepository, logger *zap.Logger) error {
	existing, err := userRepo.FindByEmail(ctx, users[0].email)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if existing != nil {
		logger.Info("seed data already present, skipping")
		return nil
	}

	// ============================================
	// USERS
	// ============================================
	ids := make([]string, len(users))
	for i, u := range users {
		created, _, _, err := services.Auth.Register(ctx, u.name, u.username, u.email, Password)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		ids[i] = created.ID
	}
	marga, bipin, kritim, prerak := ids[0], ids[1], ids[2], ids[3]

	// ============================================
	// COMMITTEE
	// ============================================
	committee, err := services.Committee.Create(ctx, marga, "ORA Technical Steering Committee",
		stringPtr("Decides on platform-wide engineering changes"), types.ThresholdMajority)
	if err != nil {
		return fmt.Errorf("seed committee: %w", err)
	}
	if _, err := services.Committee.AddMember(ctx, committee.ID, marga, bipin, "", types.RoleChair); err != nil {
		return fmt.Errorf("seed chair: %w", err)
	}
	for _, id := range []string{kritim, prerak} {
		if _, err := services.Committee.AddMember(ctx, committee.ID, marga, id, "", types.RoleMember); err != nil {
			return fmt.Errorf("seed member: %w", err)
		}
	}

	s := &seeder{ctx: ctx, svc: services, committeeID: committee.ID}

	// ============================================
	// MOTIONS
	// ============================================

	// Freshly proposed, waiting for a seconder.
	s.propose(prerak, "Move standups to 10:00", nil)

	// In debate with a few contributions.
	debated := s.seconded(kritim, marga, "Adopt Go 1.23 across all services",
		stringPtr("Upgrade toolchains and CI images before the next release train"))
	s.step(func() error {
		_, err := services.Motion.ChairDecision(ctx, debated.ID, bipin, types.ActionApprove)
		return err
	})
	s.debate(debated.ID, marga, types.PositionSupport, "Range-over-func alone is worth it.")
	s.debate(debated.ID, prerak, types.PositionNeutral, "Fine by me if CI images are ready first.")

	// Open for voting with one ballot in.
	budget := s.seconded(marga, kritim, "Approve the quarterly offsite budget", nil)
	s.step(func() error {
		if _, err := services.Motion.ChairDecision(ctx, budget.ID, bipin, types.ActionApprove); err != nil {
			return err
		}
		_, err := services.Motion.OpenVote(ctx, budget.ID, bipin)
		return err
	})
	s.step(func() error {
		_, _, err := services.Vote.CastVote(ctx, budget.ID, kritim, types.PositionSupport)
		return err
	})

	// Vetoed by the chair.
	vetoed := s.seconded(prerak, kritim, "Rewrite the dashboard in Elm", nil)
	s.step(func() error {
		_, err := services.Motion.ChairDecision(ctx, vetoed.ID, bipin, types.ActionVeto)
		return err
	})

	if s.err != nil {
		return fmt.Errorf("seed motions: %w", s.err)
	}

	logger.Info("seed data created",
		zap.String("committee_id", committee.ID),
		zap.Strings("users", []string{"marga", "bipin", "kritim", "prerak"}),
	)
	return nil
}

// seeder keeps the first error so the scenario reads top to bottom.
type seeder struct {
	ctx         context.Context
	svc         *service.Services
	committeeID string
	err         error
}

func (s *seeder) step(fn func() error) {
	if s.err == nil {
		s.err = fn()
	}
}

func (s *seeder) propose(author, title string, description *string) *repository.Motion {
	var m *repository.Motion
	s.step(func() error {
		var err error
		m, err = s.svc.Motion.Propose(s.ctx, s.committeeID, author, title, description)
		return err
	})
	if m == nil {
		return &repository.Motion{}
	}
	return m
}

func (s *seeder) seconded(author, seconder, title string, description *string) *repository.Motion {
	m := s.propose(author, title, description)
	s.step(func() error {
		_, err := s.svc.Motion.Second(s.ctx, m.ID, seconder)
		return err
	})
	return m
}

func (s *seeder) debate(motionID, author, position, content string) {
	s.step(func() error {
		_, err := s.svc.Debate.CreateEntry(s.ctx, motionID, author, position, content)
		return err
	})
}

func stringPtr(s string) *string {
	return &s
}
