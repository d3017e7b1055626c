package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/Marga-Ghale/ora-committee-backend/internal/metrics"
	"github.com/Marga-Ghale/ora-committee-backend/internal/models"
	"github.com/Marga-Ghale/ora-committee-backend/internal/repository"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/Marga-Ghale/ora-committee-backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:   "test",
		JWTSecret:     "test-secret",
		JWTExpiry:     1,
		RefreshExpiry: 1,
		CORSOrigins:   []string{"http://localhost:3000"},
	}
	m := metrics.New()
	services := service.NewServices(&service.ServiceDeps{
		Config:  cfg,
		Repos:   repository.NewRepositories(),
		Logger:  zap.NewNop(),
		Metrics: m,
	})
	return &testServer{
		t: t,
		router: NewRouter(RouterDeps{
			Config:   cfg,
			Services: services,
			Metrics:  m,
			Logger:   zap.NewNop(),
			Checks:   checks,
		}),
	}
}

// do sends a JSON request and decodes the response into out when given.
func (s *testServer) do(method, path, token string, body, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type session struct {
	id    string
	token string
}

func (s *testServer) register(username string) session {
	s.t.Helper()
	var resp models.AuthResponse
	code := s.do(http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name:     username + " Example",
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}, &resp)
	require.Equal(s.t, http.StatusCreated, code)
	return session{id: resp.User.ID, token: resp.AccessToken}
}

func TestMotionLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	alice := s.register("alice") // owner
	bob := s.register("bob")     // chair
	carol := s.register("carol")
	dave := s.register("dave")
	erin := s.register("erin")
	mallory := s.register("mallory")

	var committee models.CommitteeResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/committees", alice.token,
		models.CreateCommitteeRequest{Name: "Budget"}, &committee))
	assert.Equal(t, types.ThresholdMajority, committee.VotingThreshold)
	base := "/api/committees/" + committee.ID

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, base+"/members", alice.token,
		models.AddMemberRequest{Username: "bob", Role: types.RoleChair}, nil))
	for _, u := range []session{carol, dave, erin} {
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, base+"/members", alice.token,
			models.AddMemberRequest{UserID: u.id}, nil))
	}

	var members []models.MemberResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, base+"/members", carol.token, nil, &members))
	assert.Len(t, members, 5)

	var motion models.MotionResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, base+"/motions", carol.token,
		models.CreateMotionRequest{Title: "Buy a projector"}, &motion))
	assert.Equal(t, types.StatusProposed, motion.Status)
	assert.Equal(t, []string{types.StatusSeconded}, motion.NextStatus)
	mpath := "/api/motions/" + motion.ID

	// Seconding
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, mpath+"/second", carol.token, nil, nil))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, mpath+"/second", mallory.token, nil, nil))
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, mpath+"/second", dave.token, nil, &motion))
	assert.Equal(t, types.StatusSeconded, motion.Status)

	// Chair decision
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, mpath+"/chair/approve", carol.token,
		models.ChairDecisionRequest{Action: types.ActionApprove}, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, mpath+"/chair/approve", bob.token,
		models.ChairDecisionRequest{Action: "MAYBE"}, nil))
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, mpath+"/chair/approve", bob.token,
		models.ChairDecisionRequest{Action: types.ActionApprove}, &motion))
	assert.Equal(t, types.StatusDebate, motion.Status)

	// Debate
	var entry models.DebateEntryResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, mpath+"/debate", erin.token,
		models.CreateDebateEntryRequest{Position: types.PositionNeutral, Content: "What does it cost?"}, &entry))
	var entries []models.DebateEntryResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, mpath+"/debate", alice.token, nil, &entries))
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Author)
	assert.Equal(t, "erin", entries[0].Author.Username)
	assert.Empty(t, entries[0].Author.Email)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, mpath+"/vote", carol.token,
		models.CastVoteRequest{Position: types.PositionSupport}, nil))

	// Voting: five eligible, threshold three.
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, mpath+"/chair/open-vote", bob.token, nil, &motion))
	assert.Equal(t, types.StatusVoting, motion.Status)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, mpath+"/debate", erin.token,
		models.CreateDebateEntryRequest{Position: types.PositionSupport, Content: "late"}, nil))

	var vote models.VoteResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, mpath+"/vote", carol.token,
		models.CastVoteRequest{Position: types.PositionSupport}, &vote))
	var again models.VoteResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, mpath+"/vote", carol.token,
		models.CastVoteRequest{Position: types.PositionOppose}, &again))
	assert.Equal(t, vote.ID, again.ID)
	assert.Equal(t, types.PositionSupport, again.Position)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, mpath+"/vote", dave.token,
		models.CastVoteRequest{Position: types.PositionSupport}, nil))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, mpath+"/vote", erin.token,
		models.CastVoteRequest{Position: types.PositionSupport}, nil))

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, mpath, alice.token, nil, &motion))
	assert.Equal(t, types.StatusPassed, motion.Status)
	assert.Empty(t, motion.NextStatus)

	var tally models.TallyResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, mpath+"/vote", carol.token, nil, &tally))
	assert.Equal(t, 5, tally.Eligible)
	assert.Equal(t, 3, tally.Threshold)
	assert.Equal(t, 3, tally.Support)
	assert.Equal(t, "1.0000", tally.SupportRatio)
	assert.Equal(t, types.StatusPassed, tally.Outcome)
	require.NotNil(t, tally.MyVote)
	assert.Equal(t, vote.ID, tally.MyVote.ID)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, mpath+"/vote", alice.token,
		models.CastVoteRequest{Position: types.PositionOppose}, nil))

	var history []models.MotionEventResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, mpath+"/history", alice.token, nil, &history))
	require.Len(t, history, 5)
	assert.Empty(t, history[0].FromStatus)
	assert.Equal(t, types.StatusPassed, history[4].ToStatus)
	assert.Nil(t, history[4].ActorID)
	require.NotNil(t, history[1].ActorID)
	assert.Equal(t, dave.id, *history[1].ActorID)

	var listed []models.MotionResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, base+"/motions", erin.token, nil, &listed))
	assert.Len(t, listed, 1)
}

func TestErrorStatusCodes(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("alice")
	outsider := s.register("outsider")

	var committee models.CommitteeResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/committees", alice.token,
		models.CreateCommitteeRequest{Name: "Ops"}, &committee))

	var errBody map[string]string
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/users/me", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/users/me", "not-a-jwt", nil, http.StatusUnauthorized},
		{"duplicate user", http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
			Name: "Alice", Username: "alice", Email: "alice2@example.com", Password: "password123",
		}, http.StatusConflict},
		{"wrong password", http.MethodPost, "/api/auth/login", "", models.LoginRequest{
			Email: "alice@example.com", Password: "nope-nope",
		}, http.StatusUnauthorized},
		{"malformed body", http.MethodPost, "/api/committees", alice.token, map[string]int{"name": 1}, http.StatusBadRequest},
		{"bad threshold", http.MethodPost, "/api/committees", alice.token, models.CreateCommitteeRequest{
			Name: "X", VotingThreshold: "ALL",
		}, http.StatusBadRequest},
		{"not a member", http.MethodGet, "/api/committees/" + committee.ID, outsider.token, nil, http.StatusForbidden},
		{"missing motion", http.MethodGet, "/api/motions/does-not-exist", alice.token, nil, http.StatusNotFound},
		{"unknown user", http.MethodGet, "/api/users/by-username/ghost", alice.token, nil, http.StatusNotFound},
		{"last owner", http.MethodDelete, "/api/committees/" + committee.ID + "/members/" + alice.id, alice.token, nil, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errBody = nil
			assert.Equal(t, tt.want, s.do(tt.method, tt.path, tt.token, tt.body, &errBody))
			assert.NotEmpty(t, errBody["error"])
		})
	}
}

func TestAuthRefreshAndMe(t *testing.T) {
	s := newTestServer(t, nil)

	var auth models.AuthResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name: "Ada", Username: "ada", Email: "ada@example.com", Password: "password123",
	}, &auth))

	var me models.UserResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/users/me", auth.AccessToken, nil, &me))
	assert.Equal(t, "ada@example.com", me.Email)

	var tokens models.TokenResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/refresh", "",
		models.RefreshRequest{RefreshToken: auth.RefreshToken}, &tokens))
	assert.NotEqual(t, auth.RefreshToken, tokens.RefreshToken)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/refresh", "",
		models.RefreshRequest{RefreshToken: auth.RefreshToken}, nil))

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/logout", "",
		models.RefreshRequest{RefreshToken: tokens.RefreshToken}, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/refresh", "",
		models.RefreshRequest{RefreshToken: tokens.RefreshToken}, nil))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})

	var body map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "committee_http_request_duration_seconds")

	down := newTestServer(t, map[string]HealthCheck{
		"cache": func(context.Context) error { return errors.New("refused") },
	})
	require.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "unavailable", body["cache"])
}
