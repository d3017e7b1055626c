package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names, shared with db.EnsureMongoIndexes.
const (
	CollUsers            = "users"
	CollRefreshTokens    = "refresh_tokens"
	CollCommittees       = "committees"
	CollCommitteeMembers = "committee_members"
	CollMotions          = "motions"
	CollVotes            = "votes"
	CollDebateEntries    = "debate_entries"
)

// isTxnNotSupported reports whether err means the server cannot run
// multi-document transactions (standalone mongod).
func isTxnNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set") {
		return true
	}
	return strings.Contains(msg, "session") && strings.Contains(msg, "not supported")
}

// txnRunner runs fn inside a multi-document transaction.
type txnRunner func(ctx context.Context, fn func(context.Context) error) error

func sessionTxn(client *mongo.Client) txnRunner {
	return func(ctx context.Context, fn func(context.Context) error) error {
		sess, err := client.StartSession()
		if err != nil {
			return err
		}
		defer sess.EndSession(ctx)

		_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			return nil, fn(sc)
		})
		return err
	}
}

// withTxnFallback runs fn in a transaction and runs fallback instead when
// the deployment has no transaction support.
func withTxnFallback(ctx context.Context, run txnRunner, fn, fallback func(context.Context) error) error {
	err := run(ctx, fn)
	if !isTxnNotSupported(err) {
		return err
	}
	return fallback(ctx)
}

// newSortableID returns a time-ordered UUIDv7 string so ties on created_at
// still sort in insertion order.
func newSortableID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	err := c.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]*T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*T
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// ============================================
// Users
// ============================================

type mongoUserRepository struct {
	users  *mongo.Collection
	tokens *mongo.Collection
}

func newMongoUserRepository(db *mongo.Database) *mongoUserRepository {
	return &mongoUserRepository{
		users:  db.Collection(CollUsers),
		tokens: db.Collection(CollRefreshTokens),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	_, err := r.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return findOne[User](ctx, r.users, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return findOne[User](ctx, r.users, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return findOne[User](ctx, r.users, bson.M{"username": username})
}

func (r *mongoUserRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now().UTC()
	_, err := r.tokens.InsertOne(ctx, token)
	return err
}

func (r *mongoUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	return findOne[RefreshToken](ctx, r.tokens, bson.M{"token": token})
}

func (r *mongoUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.tokens.DeleteOne(ctx, bson.M{"token": token})
	return err
}

func (r *mongoUserRepository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.tokens.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

// ============================================
// Committees and membership
// ============================================

type mongoCommitteeRepository struct {
	client     *mongo.Client
	committees *mongo.Collection
	members    *mongo.Collection
	users      *mongo.Collection
}

func newMongoCommitteeRepository(db *mongo.Database) *mongoCommitteeRepository {
	return &mongoCommitteeRepository{
		client:     db.Client(),
		committees: db.Collection(CollCommittees),
		members:    db.Collection(CollCommitteeMembers),
		users:      db.Collection(CollUsers),
	}
}

func (r *mongoCommitteeRepository) CreateWithOwner(ctx context.Context, committee *Committee, ownerID string) error {
	committee.ID = uuid.NewString()
	committee.CreatedAt = time.Now().UTC()
	committee.UpdatedAt = committee.CreatedAt
	owner := &CommitteeMember{
		ID:          uuid.NewString(),
		CommitteeID: committee.ID,
		UserID:      ownerID,
		Role:        types.RoleOwner,
		JoinedAt:    committee.CreatedAt,
	}

	insert := func(ctx context.Context) error {
		if _, err := r.committees.InsertOne(ctx, committee); err != nil {
			return err
		}
		_, err := r.members.InsertOne(ctx, owner)
		return err
	}

	// Standalone server: insert sequentially and undo the committee if the
	// owner membership cannot be written.
	sequential := func(ctx context.Context) error {
		if _, err := r.committees.InsertOne(ctx, committee); err != nil {
			return err
		}
		if _, err := r.members.InsertOne(ctx, owner); err != nil {
			_, _ = r.committees.DeleteOne(ctx, bson.M{"_id": committee.ID})
			return err
		}
		return nil
	}

	return withTxnFallback(ctx, sessionTxn(r.client), insert, sequential)
}

func (r *mongoCommitteeRepository) FindByID(ctx context.Context, id string) (*Committee, error) {
	return findOne[Committee](ctx, r.committees, bson.M{"_id": id})
}

func (r *mongoCommitteeRepository) FindByUserID(ctx context.Context, userID string) ([]*Committee, error) {
	members, err := findAll[CommitteeMember](ctx, r.members, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.CommitteeID)
	}
	return findAll[Committee](ctx, r.committees,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
}

func (r *mongoCommitteeRepository) Update(ctx context.Context, committee *Committee) error {
	committee.UpdatedAt = time.Now().UTC()
	_, err := r.committees.UpdateByID(ctx, committee.ID, bson.M{
		"$set": bson.M{
			"name":             committee.Name,
			"description":      committee.Description,
			"voting_threshold": committee.VotingThreshold,
			"updated_at":       committee.UpdatedAt,
		},
	})
	return err
}

func (r *mongoCommitteeRepository) AddMember(ctx context.Context, member *CommitteeMember) error {
	member.ID = uuid.NewString()
	member.JoinedAt = time.Now().UTC()
	_, err := r.members.InsertOne(ctx, member)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoCommitteeRepository) FindMember(ctx context.Context, committeeID, userID string) (*CommitteeMember, error) {
	return findOne[CommitteeMember](ctx, r.members, bson.M{"committee_id": committeeID, "user_id": userID})
}

func (r *mongoCommitteeRepository) FindMembers(ctx context.Context, committeeID string) ([]*CommitteeMember, error) {
	members, err := findAll[CommitteeMember](ctx, r.members,
		bson.M{"committee_id": committeeID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}),
	)
	if err != nil || len(members) == 0 {
		return members, err
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := findAll[User](ctx, r.users,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"password": 0}),
	)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, m := range members {
		m.User = byID[m.UserID]
	}
	return members, nil
}

func (r *mongoCommitteeRepository) CountByRole(ctx context.Context, committeeID, role string) (int, error) {
	n, err := r.members.CountDocuments(ctx, bson.M{"committee_id": committeeID, "role": role})
	return int(n), err
}

func (r *mongoCommitteeRepository) UpdateMemberRole(ctx context.Context, committeeID, userID, role string) error {
	_, err := r.members.UpdateOne(ctx,
		bson.M{"committee_id": committeeID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}},
	)
	return err
}

func (r *mongoCommitteeRepository) RemoveMember(ctx context.Context, committeeID, userID string) error {
	_, err := r.members.DeleteOne(ctx, bson.M{"committee_id": committeeID, "user_id": userID})
	return err
}

// ============================================
// Motions
// ============================================

// motionDoc embeds the status history in the motion document so a status
// change and its event land in one single-document write.
type motionDoc struct {
	Motion `bson:",inline"`
	Events []MotionEvent `bson:"events"`
}

// motionProjection leaves the history out of plain motion reads.
var motionProjection = bson.M{"events": 0}

type mongoMotionRepository struct {
	motions *mongo.Collection
}

func newMongoMotionRepository(db *mongo.Database) *mongoMotionRepository {
	return &mongoMotionRepository{motions: db.Collection(CollMotions)}
}

func (r *mongoMotionRepository) Create(ctx context.Context, motion *Motion) error {
	motion.ID = newSortableID()
	motion.CreatedAt = time.Now().UTC()
	motion.UpdatedAt = motion.CreatedAt

	author := motion.AuthorID
	doc := motionDoc{
		Motion: *motion,
		Events: []MotionEvent{{
			ID:        uuid.NewString(),
			MotionID:  motion.ID,
			ActorID:   &author,
			ToStatus:  motion.Status,
			CreatedAt: motion.CreatedAt,
		}},
	}
	_, err := r.motions.InsertOne(ctx, doc)
	return err
}

func (r *mongoMotionRepository) FindByID(ctx context.Context, id string) (*Motion, error) {
	var m Motion
	err := r.motions.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(motionProjection)).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mongoMotionRepository) FindByCommitteeID(ctx context.Context, committeeID string) ([]*Motion, error) {
	return findAll[Motion](ctx, r.motions,
		bson.M{"committee_id": committeeID},
		options.Find().
			SetProjection(motionProjection).
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
}

func (r *mongoMotionRepository) FindByStatuses(ctx context.Context, statuses []string) ([]*Motion, error) {
	return findAll[Motion](ctx, r.motions,
		bson.M{"status": bson.M{"$in": statuses}},
		options.Find().
			SetProjection(motionProjection).
			SetSort(bson.D{{Key: "updated_at", Value: 1}}),
	)
}

func (r *mongoMotionRepository) UpdateStatus(ctx context.Context, id, from, to string, actorID *string) (*Motion, error) {
	at := time.Now().UTC()
	event := MotionEvent{
		ID:         uuid.NewString(),
		MotionID:   id,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  at,
	}

	var m Motion
	err := r.motions.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{
			"$set":  bson.M{"status": to, "updated_at": at},
			"$push": bson.M{"events": event},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(motionProjection),
	).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mongoMotionRepository) FindEvents(ctx context.Context, motionID string) ([]*MotionEvent, error) {
	var doc struct {
		Events []MotionEvent `bson:"events"`
	}
	err := r.motions.FindOne(ctx, bson.M{"_id": motionID},
		options.FindOne().SetProjection(bson.M{"events": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]*MotionEvent, 0, len(doc.Events))
	for i := range doc.Events {
		out = append(out, &doc.Events[i])
	}
	return out, nil
}

// ============================================
// Votes
// ============================================

type mongoVoteRepository struct {
	client  *mongo.Client
	votes   *mongo.Collection
	motions *mongo.Collection
}

func newMongoVoteRepository(db *mongo.Database) *mongoVoteRepository {
	return &mongoVoteRepository{
		client:  db.Client(),
		votes:   db.Collection(CollVotes),
		motions: db.Collection(CollMotions),
	}
}

func openVotingFilter(motionID string) bson.M {
	return bson.M{
		"_id":    motionID,
		"status": bson.M{"$in": types.OpenVotingStatuses},
	}
}

// Cast relies on the unique (motion_id, author_id) index for uniqueness.
// On a replica set the ballot counter bump on the open motion and the vote
// insert share a transaction, so a concurrent status change write-conflicts
// with the cast instead of slipping between the check and the insert.
func (r *mongoVoteRepository) Cast(ctx context.Context, vote *Vote) (bool, error) {
	existing, err := r.FindByMotionAndAuthor(ctx, vote.MotionID, vote.AuthorID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		*vote = *existing
		return false, nil
	}

	vote.ID = uuid.NewString()
	vote.CreatedAt = time.Now().UTC()

	guarded := func(ctx context.Context) error {
		res, err := r.motions.UpdateOne(ctx, openVotingFilter(vote.MotionID),
			bson.M{"$inc": bson.M{"ballots": 1}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrVotingClosed
		}
		_, err = r.votes.InsertOne(ctx, vote)
		return err
	}

	// Standalone server: check then insert.
	sequential := func(ctx context.Context) error {
		n, err := r.motions.CountDocuments(ctx, openVotingFilter(vote.MotionID))
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrVotingClosed
		}
		_, err = r.votes.InsertOne(ctx, vote)
		return err
	}

	err = withTxnFallback(ctx, sessionTxn(r.client), guarded, sequential)
	if mongo.IsDuplicateKeyError(err) {
		existing, err := r.FindByMotionAndAuthor(ctx, vote.MotionID, vote.AuthorID)
		if err != nil {
			return false, err
		}
		if existing != nil {
			*vote = *existing
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mongoVoteRepository) FindByMotion(ctx context.Context, motionID string) ([]*Vote, error) {
	return findAll[Vote](ctx, r.votes,
		bson.M{"motion_id": motionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
}

func (r *mongoVoteRepository) FindByMotionAndAuthor(ctx context.Context, motionID, authorID string) (*Vote, error) {
	return findOne[Vote](ctx, r.votes, bson.M{"motion_id": motionID, "author_id": authorID})
}

// ============================================
// Debate
// ============================================

type mongoDebateRepository struct {
	entries *mongo.Collection
	motions *mongo.Collection
	users   *mongo.Collection
}

func newMongoDebateRepository(db *mongo.Database) *mongoDebateRepository {
	return &mongoDebateRepository{
		entries: db.Collection(CollDebateEntries),
		motions: db.Collection(CollMotions),
		users:   db.Collection(CollUsers),
	}
}

func (r *mongoDebateRepository) Create(ctx context.Context, entry *DebateEntry) error {
	n, err := r.motions.CountDocuments(ctx, bson.M{"_id": entry.MotionID, "status": types.DebateStatus})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDebateClosed
	}
	entry.ID = newSortableID()
	entry.CreatedAt = time.Now().UTC()
	_, err = r.entries.InsertOne(ctx, entry)
	return err
}

func (r *mongoDebateRepository) FindByMotion(ctx context.Context, motionID string) ([]*DebateEntry, error) {
	entries, err := findAll[DebateEntry](ctx, r.entries,
		bson.M{"motion_id": motionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil || len(entries) == 0 {
		return entries, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AuthorID)
	}
	users, err := findAll[User](ctx, r.users,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"password": 0}),
	)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, e := range entries {
		e.Author = byID[e.AuthorID]
	}
	return entries, nil
}
