package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// PostgreSQL Committee Repository Implementation
// ============================================

type pgCommitteeRepository struct {
	pool *pgxpool.Pool
}

// NewPgCommitteeRepository creates a new PostgreSQL committee repository
func NewPgCommitteeRepository(pool *pgxpool.Pool) CommitteeRepository {
	return &pgCommitteeRepository{pool: pool}
}

const committeeColumns = `id, name, description, voting_threshold, created_by, created_at, updated_at`

func scanCommittee(row pgx.Row) (*Committee, error) {
	c := &Committee{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.VotingThreshold, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCommitteeRepository) CreateWithOwner(ctx context.Context, committee *Committee, ownerID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO committees (name, description, voting_threshold, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, committee.Name, committee.Description, committee.VotingThreshold, committee.CreatedBy,
	).Scan(&committee.ID, &committee.CreatedAt, &committee.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO committee_members (committee_id, user_id, role)
		VALUES ($1, $2, 'OWNER')
	`, committee.ID, ownerID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgCommitteeRepository) FindByID(ctx context.Context, id string) (*Committee, error) {
	if !validID(id) {
		return nil, nil
	}
	c, err := scanCommittee(r.pool.QueryRow(ctx, `SELECT `+committeeColumns+` FROM committees WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *pgCommitteeRepository) FindByUserID(ctx context.Context, userID string) ([]*Committee, error) {
	if !validID(userID) {
		return nil, nil
	}
	query := `
		SELECT c.id, c.name, c.description, c.voting_threshold, c.created_by, c.created_at, c.updated_at
		FROM committees c
		INNER JOIN committee_members cm ON c.id = cm.committee_id
		WHERE cm.user_id = $1
		ORDER BY c.name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var committees []*Committee
	for rows.Next() {
		c, err := scanCommittee(rows)
		if err != nil {
			return nil, err
		}
		committees = append(committees, c)
	}
	return committees, rows.Err()
}

func (r *pgCommitteeRepository) Update(ctx context.Context, committee *Committee) error {
	query := `
		UPDATE committees
		SET name = $2, description = $3, voting_threshold = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		committee.ID, committee.Name, committee.Description, committee.VotingThreshold,
	).Scan(&committee.UpdatedAt)
}

func (r *pgCommitteeRepository) AddMember(ctx context.Context, member *CommitteeMember) error {
	query := `
		INSERT INTO committee_members (committee_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	err := r.pool.QueryRow(ctx, query, member.CommitteeID, member.UserID, member.Role).
		Scan(&member.ID, &member.JoinedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *pgCommitteeRepository) FindMember(ctx context.Context, committeeID, userID string) (*CommitteeMember, error) {
	if !validID(committeeID, userID) {
		return nil, nil
	}
	query := `
		SELECT id, committee_id, user_id, role, joined_at
		FROM committee_members WHERE committee_id = $1 AND user_id = $2
	`
	m := &CommitteeMember{}
	err := r.pool.QueryRow(ctx, query, committeeID, userID).Scan(
		&m.ID, &m.CommitteeID, &m.UserID, &m.Role, &m.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgCommitteeRepository) FindMembers(ctx context.Context, committeeID string) ([]*CommitteeMember, error) {
	if !validID(committeeID) {
		return nil, nil
	}
	query := `
		SELECT cm.id, cm.committee_id, cm.user_id, cm.role, cm.joined_at,
		       u.id, u.username, u.email, u.name, u.created_at, u.updated_at
		FROM committee_members cm
		JOIN users u ON cm.user_id = u.id
		WHERE cm.committee_id = $1
		ORDER BY cm.joined_at
	`
	rows, err := r.pool.Query(ctx, query, committeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*CommitteeMember
	for rows.Next() {
		m := &CommitteeMember{User: &User{}}
		if err := rows.Scan(
			&m.ID, &m.CommitteeID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Username, &m.User.Email, &m.User.Name, &m.User.CreatedAt, &m.User.UpdatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgCommitteeRepository) CountByRole(ctx context.Context, committeeID, role string) (int, error) {
	if !validID(committeeID) {
		return 0, nil
	}
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM committee_members WHERE committee_id = $1 AND role = $2`,
		committeeID, role,
	).Scan(&n)
	return n, err
}

func (r *pgCommitteeRepository) UpdateMemberRole(ctx context.Context, committeeID, userID, role string) error {
	if !validID(committeeID, userID) {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE committee_members SET role = $3 WHERE committee_id = $1 AND user_id = $2`,
		committeeID, userID, role,
	)
	return err
}

func (r *pgCommitteeRepository) RemoveMember(ctx context.Context, committeeID, userID string) error {
	if !validID(committeeID, userID) {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`DELETE FROM committee_members WHERE committee_id = $1 AND user_id = $2`,
		committeeID, userID,
	)
	return err
}
