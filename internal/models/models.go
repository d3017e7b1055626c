package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Username string `json:"username" binding:"required,min=2,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================
// Committee DTOs
// ============================================

type CreateCommitteeRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     *string `json:"description"`
	VotingThreshold string  `json:"votingThreshold"`
}

type UpdateCommitteeRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	VotingThreshold *string `json:"votingThreshold"`
}

type CommitteeResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	VotingThreshold string    `json:"votingThreshold"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AddMemberRequest identifies the new member by userId or username.
type AddMemberRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type MemberResponse struct {
	ID          string        `json:"id"`
	CommitteeID string        `json:"committeeId"`
	UserID      string        `json:"userId"`
	Role        string        `json:"role"`
	JoinedAt    time.Time     `json:"joinedAt"`
	User        *UserResponse `json:"user,omitempty"`
}

// ============================================
// Motion DTOs
// ============================================

type CreateMotionRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

type ChairDecisionRequest struct {
	Action string `json:"action" binding:"required"`
}

type MotionResponse struct {
	ID          string    `json:"id"`
	CommitteeID string    `json:"committeeId"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	NextStatus  []string  `json:"nextStatus"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type MotionEventResponse struct {
	ID         string    `json:"id"`
	MotionID   string    `json:"motionId"`
	ActorID    *string   `json:"actorId"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ============================================
// Vote DTOs
// ============================================

type CastVoteRequest struct {
	Position string `json:"position" binding:"required"`
}

type VoteResponse struct {
	ID        string    `json:"id"`
	MotionID  string    `json:"motionId"`
	AuthorID  string    `json:"authorId"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// TallyResponse carries ratios as fixed-point strings, e.g. "0.6000".
type TallyResponse struct {
	MotionID     string        `json:"motionId"`
	Status       string        `json:"status"`
	Mode         string        `json:"mode"`
	Eligible     int           `json:"eligible"`
	Threshold    int           `json:"threshold"`
	Support      int           `json:"support"`
	Oppose       int           `json:"oppose"`
	Cast         int           `json:"cast"`
	Remaining    int           `json:"remaining"`
	SupportRatio string        `json:"supportRatio"`
	Progress     string        `json:"progress"`
	Outcome      string        `json:"outcome"`
	MyVote       *VoteResponse `json:"myVote"`
}

// ============================================
// Debate DTOs
// ============================================

type CreateDebateEntryRequest struct {
	Position string `json:"position" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

type DebateEntryResponse struct {
	ID        string        `json:"id"`
	MotionID  string        `json:"motionId"`
	AuthorID  string        `json:"authorId"`
	Position  string        `json:"position"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	Author    *UserResponse `json:"author,omitempty"`
}
