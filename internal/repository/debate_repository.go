package repository

import (
	"context"

	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgDebateRepository struct {
	pool *pgxpool.Pool
}

func NewPgDebateRepository(pool *pgxpool.Pool) DebateRepository {
	return &pgDebateRepository{pool: pool}
}

func (r *pgDebateRepository) Create(ctx context.Context, entry *DebateEntry) error {
	if !validID(entry.MotionID, entry.AuthorID) {
		return ErrDebateClosed
	}
	query := `
		INSERT INTO debate_entries (motion_id, author_id, position, content)
		SELECT m.id, $2, $3, $4 FROM motions m
		WHERE m.id = $1 AND m.status = $5
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		entry.MotionID, entry.AuthorID, entry.Position, entry.Content, types.DebateStatus,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err == pgx.ErrNoRows {
		return ErrDebateClosed
	}
	return err
}

func (r *pgDebateRepository) FindByMotion(ctx context.Context, motionID string) ([]*DebateEntry, error) {
	if !validID(motionID) {
		return nil, nil
	}
	query := `
		SELECT d.id, d.motion_id, d.author_id, d.position, d.content, d.created_at,
		       u.id, u.username, u.name
		FROM debate_entries d
		JOIN users u ON d.author_id = u.id
		WHERE d.motion_id = $1
		ORDER BY d.created_at DESC, d.seq DESC
	`
	rows, err := r.pool.Query(ctx, query, motionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*DebateEntry
	for rows.Next() {
		e := &DebateEntry{Author: &User{}}
		if err := rows.Scan(
			&e.ID, &e.MotionID, &e.AuthorID, &e.Position, &e.Content, &e.CreatedAt,
			&e.Author.ID, &e.Author.Username, &e.Author.Name,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
