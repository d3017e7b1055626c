package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// PostgreSQL Motion Repository Implementation
// ============================================

type pgMotionRepository struct {
	pool *pgxpool.Pool
}

// NewPgMotionRepository creates a new PostgreSQL motion repository
func NewPgMotionRepository(pool *pgxpool.Pool) MotionRepository {
	return &pgMotionRepository{pool: pool}
}

const motionColumns = `id, committee_id, author_id, title, description, status, created_at, updated_at`

func scanMotion(row pgx.Row) (*Motion, error) {
	m := &Motion{}
	err := row.Scan(&m.ID, &m.CommitteeID, &m.AuthorID, &m.Title, &m.Description, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMotionRepository) queryMotions(ctx context.Context, query string, args ...any) ([]*Motion, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var motions []*Motion
	for rows.Next() {
		m, err := scanMotion(rows)
		if err != nil {
			return nil, err
		}
		motions = append(motions, m)
	}
	return motions, rows.Err()
}

func (r *pgMotionRepository) Create(ctx context.Context, motion *Motion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO motions (committee_id, author_id, title, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, motion.CommitteeID, motion.AuthorID, motion.Title, motion.Description, motion.Status,
	).Scan(&motion.ID, &motion.CreatedAt, &motion.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO motion_events (motion_id, actor_id, from_status, to_status)
		VALUES ($1, $2, '', $3)
	`, motion.ID, motion.AuthorID, motion.Status)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgMotionRepository) FindByID(ctx context.Context, id string) (*Motion, error) {
	if !validID(id) {
		return nil, nil
	}
	m, err := scanMotion(r.pool.QueryRow(ctx, `SELECT `+motionColumns+` FROM motions WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *pgMotionRepository) FindByCommitteeID(ctx context.Context, committeeID string) ([]*Motion, error) {
	if !validID(committeeID) {
		return nil, nil
	}
	return r.queryMotions(ctx,
		`SELECT `+motionColumns+` FROM motions WHERE committee_id = $1 ORDER BY created_at DESC, id DESC`,
		committeeID,
	)
}

func (r *pgMotionRepository) FindByStatuses(ctx context.Context, statuses []string) ([]*Motion, error) {
	return r.queryMotions(ctx,
		`SELECT `+motionColumns+` FROM motions WHERE status = ANY($1) ORDER BY updated_at`,
		statuses,
	)
}

func (r *pgMotionRepository) UpdateStatus(ctx context.Context, id, from, to string, actorID *string) (*Motion, error) {
	if !validID(id) {
		return nil, ErrStatusConflict
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Compare-and-swap on the observed status. A concurrent writer that
	// committed first leaves zero matching rows.
	m, err := scanMotion(tx.QueryRow(ctx, `
		UPDATE motions SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+motionColumns,
		id, from, to,
	))
	if err == pgx.ErrNoRows {
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO motion_events (motion_id, actor_id, from_status, to_status)
		VALUES ($1, $2, $3, $4)
	`, id, actorID, from, to)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMotionRepository) FindEvents(ctx context.Context, motionID string) ([]*MotionEvent, error) {
	if !validID(motionID) {
		return nil, nil
	}
	query := `
		SELECT id, motion_id, actor_id, from_status, to_status, created_at
		FROM motion_events
		WHERE motion_id = $1
		ORDER BY created_at, seq
	`
	rows, err := r.pool.Query(ctx, query, motionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*MotionEvent
	for rows.Next() {
		e := &MotionEvent{}
		if err := rows.Scan(&e.ID, &e.MotionID, &e.ActorID, &e.FromStatus, &e.ToStatus, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
