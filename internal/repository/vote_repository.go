package repository

import (
	"context"

	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// PostgreSQL Vote Repository Implementation
// ============================================

type pgVoteRepository struct {
	pool *pgxpool.Pool
}

// NewPgVoteRepository creates a new PostgreSQL vote repository
func NewPgVoteRepository(pool *pgxpool.Pool) VoteRepository {
	return &pgVoteRepository{pool: pool}
}

func (r *pgVoteRepository) Cast(ctx context.Context, vote *Vote) (bool, error) {
	if !validID(vote.MotionID, vote.AuthorID) {
		return false, ErrVotingClosed
	}
	// The insert only happens while the motion is open, and the unique
	// (motion_id, author_id) constraint makes concurrent duplicates a no-op.
	query := `
		INSERT INTO votes (motion_id, author_id, position)
		SELECT m.id, $2, $3 FROM motions m
		WHERE m.id = $1 AND m.status = ANY($4)
		ON CONFLICT (motion_id, author_id) DO NOTHING
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, vote.MotionID, vote.AuthorID, vote.Position, types.OpenVotingStatuses).
		Scan(&vote.ID, &vote.CreatedAt)
	if err == nil {
		return true, nil
	}
	if err != pgx.ErrNoRows {
		return false, err
	}

	existing, err := r.FindByMotionAndAuthor(ctx, vote.MotionID, vote.AuthorID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, ErrVotingClosed
	}
	*vote = *existing
	return false, nil
}

func (r *pgVoteRepository) FindByMotion(ctx context.Context, motionID string) ([]*Vote, error) {
	if !validID(motionID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, motion_id, author_id, position, created_at
		FROM votes WHERE motion_id = $1
		ORDER BY created_at
	`, motionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []*Vote
	for rows.Next() {
		v := &Vote{}
		if err := rows.Scan(&v.ID, &v.MotionID, &v.AuthorID, &v.Position, &v.CreatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (r *pgVoteRepository) FindByMotionAndAuthor(ctx context.Context, motionID, authorID string) (*Vote, error) {
	if !validID(motionID, authorID) {
		return nil, nil
	}
	v := &Vote{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, motion_id, author_id, position, created_at
		FROM votes WHERE motion_id = $1 AND author_id = $2
	`, motionID, authorID).Scan(&v.ID, &v.MotionID, &v.AuthorID, &v.Position, &v.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
