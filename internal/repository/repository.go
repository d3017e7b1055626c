// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStatusConflict is returned when a motion is no longer in the status
	// the caller observed.
	ErrStatusConflict = errors.New("motion status changed concurrently")
	// ErrVotingClosed is returned when a vote arrives for a motion that is
	// not accepting votes.
	ErrVotingClosed = errors.New("voting is not open")
	// ErrDebateClosed is returned when a debate entry arrives for a motion
	// that is not in debate.
	ErrDebateClosed = errors.New("debate is not open")
)

// ============================================
// Models / Entities
// ============================================

type User struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type RefreshToken struct {
	ID        string    `bson:"_id"`
	Token     string    `bson:"token"`
	UserID    string    `bson:"user_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

type Committee struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	Description     *string   `bson:"description,omitempty"`
	VotingThreshold string    `bson:"voting_threshold"`
	CreatedBy       string    `bson:"created_by"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// CommitteeMember is the membership of one user in one committee.
// Exactly one per (committee_id, user_id).
type CommitteeMember struct {
	ID          string    `bson:"_id"`
	CommitteeID string    `bson:"committee_id"`
	UserID      string    `bson:"user_id"`
	Role        string    `bson:"role"`
	JoinedAt    time.Time `bson:"joined_at"`
	User        *User     `bson:"-"`
}

type Motion struct {
	ID          string    `bson:"_id"`
	CommitteeID string    `bson:"committee_id"`
	AuthorID    string    `bson:"author_id"`
	Title       string    `bson:"title"`
	Description *string   `bson:"description,omitempty"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// MotionEvent records one status change. ActorID is nil for system
// transitions and FromStatus is empty for the creation event.
type MotionEvent struct {
	ID         string    `bson:"id"`
	MotionID   string    `bson:"motion_id"`
	ActorID    *string   `bson:"actor_id,omitempty"`
	FromStatus string    `bson:"from_status"`
	ToStatus   string    `bson:"to_status"`
	CreatedAt  time.Time `bson:"created_at"`
}

type Vote struct {
	ID        string    `bson:"_id"`
	MotionID  string    `bson:"motion_id"`
	AuthorID  string    `bson:"author_id"`
	Position  string    `bson:"position"`
	CreatedAt time.Time `bson:"created_at"`
}

type DebateEntry struct {
	ID        string    `bson:"_id"`
	MotionID  string    `bson:"motion_id"`
	AuthorID  string    `bson:"author_id"`
	Position  string    `bson:"position"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	Author    *User     `bson:"-"`
}

// ============================================
// Repository Interfaces
// ============================================

// Finders return (nil, nil) when no record matches.

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
}

type CommitteeRepository interface {
	// CreateWithOwner inserts the committee and the creator's OWNER
	// membership atomically.
	CreateWithOwner(ctx context.Context, committee *Committee, ownerID string) error
	FindByID(ctx context.Context, id string) (*Committee, error)
	FindByUserID(ctx context.Context, userID string) ([]*Committee, error)
	Update(ctx context.Context, committee *Committee) error

	// Member operations
	AddMember(ctx context.Context, member *CommitteeMember) error
	FindMember(ctx context.Context, committeeID, userID string) (*CommitteeMember, error)
	FindMembers(ctx context.Context, committeeID string) ([]*CommitteeMember, error)
	CountByRole(ctx context.Context, committeeID, role string) (int, error)
	UpdateMemberRole(ctx context.Context, committeeID, userID, role string) error
	RemoveMember(ctx context.Context, committeeID, userID string) error
}

type MotionRepository interface {
	// Create inserts the motion together with its creation event.
	Create(ctx context.Context, motion *Motion) error
	FindByID(ctx context.Context, id string) (*Motion, error)
	FindByCommitteeID(ctx context.Context, committeeID string) ([]*Motion, error)
	FindByStatuses(ctx context.Context, statuses []string) ([]*Motion, error)
	// UpdateStatus moves the motion from one status to another only if it
	// is still in the from status, and records the event in the same write.
	// Returns ErrStatusConflict when the motion is no longer in from.
	UpdateStatus(ctx context.Context, id, from, to string, actorID *string) (*Motion, error)
	FindEvents(ctx context.Context, motionID string) ([]*MotionEvent, error)
}

type VoteRepository interface {
	// Cast inserts the vote if the author has not voted yet and the motion
	// is open for voting. On a duplicate the existing vote is copied into
	// vote and created is false. Returns ErrVotingClosed when the motion
	// does not accept votes and the author has no vote.
	Cast(ctx context.Context, vote *Vote) (created bool, err error)
	FindByMotion(ctx context.Context, motionID string) ([]*Vote, error)
	FindByMotionAndAuthor(ctx context.Context, motionID, authorID string) (*Vote, error)
}

type DebateRepository interface {
	// Create appends the entry if the motion is in debate, else
	// ErrDebateClosed.
	Create(ctx context.Context, entry *DebateEntry) error
	// FindByMotion lists entries newest first.
	FindByMotion(ctx context.Context, motionID string) ([]*DebateEntry, error)
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	UserRepo      UserRepository
	CommitteeRepo CommitteeRepository
	MotionRepo    MotionRepository
	VoteRepo      VoteRepository
	DebateRepo    DebateRepository
}

// NewRepositories creates in-memory repositories (for testing/fallback)
func NewRepositories() *Repositories {
	s := newMemoryStore()
	return &Repositories{
		UserRepo:      &memUserRepository{s},
		CommitteeRepo: &memCommitteeRepository{s},
		MotionRepo:    &memMotionRepository{s},
		VoteRepo:      &memVoteRepository{s},
		DebateRepo:    &memDebateRepository{s},
	}
}

// NewPgRepositories creates PostgreSQL-backed repositories
func NewPgRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:      &pgUserRepository{pool: pool},
		CommitteeRepo: &pgCommitteeRepository{pool: pool},
		MotionRepo:    &pgMotionRepository{pool: pool},
		VoteRepo:      &pgVoteRepository{pool: pool},
		DebateRepo:    &pgDebateRepository{pool: pool},
	}
}

// NewMongoRepositories creates document-store repositories. Indexes are
// expected to exist (see db.EnsureMongoIndexes).
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		UserRepo:      newMongoUserRepository(db),
		CommitteeRepo: newMongoCommitteeRepository(db),
		MotionRepo:    newMongoMotionRepository(db),
		VoteRepo:      newMongoVoteRepository(db),
		DebateRepo:    newMongoDebateRepository(db),
	}
}
