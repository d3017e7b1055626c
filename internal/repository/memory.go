package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/google/uuid"
)

// ============================================
// In-Memory Store
// ============================================

// memoryStore backs every in-memory repository with one lock so that
// cross-entity checks (vote vs. motion status) are atomic. Records are
// copied on the way in and out.
type memoryStore struct {
	mu sync.RWMutex

	seq int64

	users         map[string]User
	refreshTokens map[string]RefreshToken
	committees    map[string]Committee
	members       map[string]CommitteeMember // key: committeeID/userID
	motions       map[string]Motion
	motionSeq     map[string]int64
	events        map[string][]MotionEvent
	votes         map[string]Vote // key: motionID/authorID
	voteSeq       map[string]int64
	debates       map[string][]DebateEntry // append order
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[string]User),
		refreshTokens: make(map[string]RefreshToken),
		committees:    make(map[string]Committee),
		members:       make(map[string]CommitteeMember),
		motions:       make(map[string]Motion),
		motionSeq:     make(map[string]int64),
		events:        make(map[string][]MotionEvent),
		votes:         make(map[string]Vote),
		voteSeq:       make(map[string]int64),
		debates:       make(map[string][]DebateEntry),
	}
}

func (s *memoryStore) next() int64 {
	s.seq++
	return s.seq
}

func pairKey(a, b string) string { return a + "/" + b }

func now() time.Time { return time.Now().UTC() }

// ============================================
// Users
// ============================================

type memUserRepository struct{ s *memoryStore }

func (r *memUserRepository) Create(_ context.Context, user *User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUserRepository) find(match func(User) bool) *User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			out := u
			return &out
		}
	}
	return nil
}

func (r *memUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	return r.find(func(u User) bool { return u.ID == id }), nil
}

func (r *memUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u User) bool { return u.Email == email }), nil
}

func (r *memUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	return r.find(func(u User) bool { return u.Username == username }), nil
}

func (r *memUserRepository) SaveRefreshToken(_ context.Context, token *RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = now()
	r.s.refreshTokens[token.Token] = *token
	return nil
}

func (r *memUserRepository) FindRefreshToken(_ context.Context, token string) (*RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rt, ok := r.s.refreshTokens[token]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (r *memUserRepository) DeleteRefreshToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.refreshTokens, token)
	return nil
}

func (r *memUserRepository) DeleteUserRefreshTokens(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, rt := range r.s.refreshTokens {
		if rt.UserID == userID {
			delete(r.s.refreshTokens, k)
		}
	}
	return nil
}

// ============================================
// Committees and membership
// ============================================

type memCommitteeRepository struct{ s *memoryStore }

func (r *memCommitteeRepository) CreateWithOwner(_ context.Context, committee *Committee, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	committee.ID = uuid.NewString()
	committee.CreatedAt = now()
	committee.UpdatedAt = committee.CreatedAt
	r.s.committees[committee.ID] = *committee
	r.s.members[pairKey(committee.ID, ownerID)] = CommitteeMember{
		ID:          uuid.NewString(),
		CommitteeID: committee.ID,
		UserID:      ownerID,
		Role:        types.RoleOwner,
		JoinedAt:    committee.CreatedAt,
	}
	return nil
}

func (r *memCommitteeRepository) FindByID(_ context.Context, id string) (*Committee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.committees[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCommitteeRepository) FindByUserID(_ context.Context, userID string) ([]*Committee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*Committee
	for _, m := range r.s.members {
		if m.UserID != userID {
			continue
		}
		if c, ok := r.s.committees[m.CommitteeID]; ok {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCommitteeRepository) Update(_ context.Context, committee *Committee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.committees[committee.ID]; !ok {
		return nil
	}
	committee.UpdatedAt = now()
	r.s.committees[committee.ID] = *committee
	return nil
}

func (r *memCommitteeRepository) AddMember(_ context.Context, member *CommitteeMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey(member.CommitteeID, member.UserID)
	if _, exists := r.s.members[key]; exists {
		return ErrDuplicate
	}
	member.ID = uuid.NewString()
	member.JoinedAt = now()
	stored := *member
	stored.User = nil
	r.s.members[key] = stored
	return nil
}

func (r *memCommitteeRepository) FindMember(_ context.Context, committeeID, userID string) (*CommitteeMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.members[pairKey(committeeID, userID)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memCommitteeRepository) FindMembers(_ context.Context, committeeID string) ([]*CommitteeMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*CommitteeMember
	for _, m := range r.s.members {
		if m.CommitteeID != committeeID {
			continue
		}
		m := m
		if u, ok := r.s.users[m.UserID]; ok {
			u.Password = ""
			m.User = &u
		}
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *memCommitteeRepository) CountByRole(_ context.Context, committeeID, role string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.members {
		if m.CommitteeID == committeeID && m.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *memCommitteeRepository) UpdateMemberRole(_ context.Context, committeeID, userID, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(committeeID, userID)
	if m, ok := r.s.members[key]; ok {
		m.Role = role
		r.s.members[key] = m
	}
	return nil
}

func (r *memCommitteeRepository) RemoveMember(_ context.Context, committeeID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.members, pairKey(committeeID, userID))
	return nil
}

// ============================================
// Motions
// ============================================

type memMotionRepository struct{ s *memoryStore }

func (r *memMotionRepository) Create(_ context.Context, motion *Motion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	motion.ID = uuid.NewString()
	motion.CreatedAt = now()
	motion.UpdatedAt = motion.CreatedAt
	r.s.motions[motion.ID] = *motion
	r.s.motionSeq[motion.ID] = r.s.next()

	author := motion.AuthorID
	r.s.events[motion.ID] = []MotionEvent{{
		ID:        uuid.NewString(),
		MotionID:  motion.ID,
		ActorID:   &author,
		ToStatus:  motion.Status,
		CreatedAt: motion.CreatedAt,
	}}
	return nil
}

func (r *memMotionRepository) FindByID(_ context.Context, id string) (*Motion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.motions[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memMotionRepository) FindByCommitteeID(_ context.Context, committeeID string) ([]*Motion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*Motion
	for _, m := range r.s.motions {
		if m.CommitteeID == committeeID {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.motionSeq[out[i].ID] > r.s.motionSeq[out[j].ID]
	})
	return out, nil
}

func (r *memMotionRepository) FindByStatuses(_ context.Context, statuses []string) ([]*Motion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*Motion
	for _, m := range r.s.motions {
		if types.Contains(statuses, m.Status) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.motionSeq[out[i].ID] < r.s.motionSeq[out[j].ID]
	})
	return out, nil
}

func (r *memMotionRepository) UpdateStatus(_ context.Context, id, from, to string, actorID *string) (*Motion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.motions[id]
	if !ok || m.Status != from {
		return nil, ErrStatusConflict
	}
	m.Status = to
	m.UpdatedAt = now()
	r.s.motions[id] = m

	var actor *string
	if actorID != nil {
		a := *actorID
		actor = &a
	}
	r.s.events[id] = append(r.s.events[id], MotionEvent{
		ID:         uuid.NewString(),
		MotionID:   id,
		ActorID:    actor,
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  m.UpdatedAt,
	})
	return &m, nil
}

func (r *memMotionRepository) FindEvents(_ context.Context, motionID string) ([]*MotionEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	events := r.s.events[motionID]
	out := make([]*MotionEvent, 0, len(events))
	for _, e := range events {
		e := e
		out = append(out, &e)
	}
	return out, nil
}

// ============================================
// Votes
// ============================================

type memVoteRepository struct{ s *memoryStore }

func (r *memVoteRepository) Cast(_ context.Context, vote *Vote) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pairKey(vote.MotionID, vote.AuthorID)
	if existing, ok := r.s.votes[key]; ok {
		*vote = existing
		return false, nil
	}
	m, ok := r.s.motions[vote.MotionID]
	if !ok || !types.IsVotingOpen(m.Status) {
		return false, ErrVotingClosed
	}

	vote.ID = uuid.NewString()
	vote.CreatedAt = now()
	r.s.votes[key] = *vote
	r.s.voteSeq[key] = r.s.next()
	return true, nil
}

func (r *memVoteRepository) FindByMotion(_ context.Context, motionID string) ([]*Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*Vote
	for _, v := range r.s.votes {
		if v.MotionID == motionID {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.voteSeq[pairKey(motionID, out[i].AuthorID)] < r.s.voteSeq[pairKey(motionID, out[j].AuthorID)]
	})
	return out, nil
}

func (r *memVoteRepository) FindByMotionAndAuthor(_ context.Context, motionID, authorID string) (*Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.votes[pairKey(motionID, authorID)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// ============================================
// Debate
// ============================================

type memDebateRepository struct{ s *memoryStore }

func (r *memDebateRepository) Create(_ context.Context, entry *DebateEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.motions[entry.MotionID]
	if !ok || m.Status != types.DebateStatus {
		return ErrDebateClosed
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = now()
	stored := *entry
	stored.Author = nil
	r.s.debates[entry.MotionID] = append(r.s.debates[entry.MotionID], stored)
	return nil
}

func (r *memDebateRepository) FindByMotion(_ context.Context, motionID string) ([]*DebateEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := r.s.debates[motionID]
	out := make([]*DebateEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if u, ok := r.s.users[e.AuthorID]; ok {
			u.Password = ""
			e.Author = &u
		}
		out = append(out, &e)
	}
	return out, nil
}
