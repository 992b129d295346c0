package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/auth"
	"github.com/mannaworks/manna-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionSecret = []byte("session-test-secret")

func sessionUser(roles ...string) models.User {
	u := models.User{
		ID:          uuid.New(),
		Email:       "rin@example.com",
		Username:    "rin",
		DisplayName: "Rin",
	}
	u.SetRoles(roles)
	return u
}

func issue(t *testing.T, u models.User, validity time.Duration) string {
	t.Helper()
	tok, err := auth.IssueToken(&u, sessionSecret, validity)
	require.NoError(t, err)
	return tok
}

// acceptServer answers /api/auth/verify with a valid=true payload echoing
// the given user.
func acceptServer(t *testing.T, u models.User) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/verify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"valid": true, "user": u})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func rejectServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"error": true, "message": "Unauthorized"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_NoTokenStaysAnonymous(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:0")
	assert.Equal(t, StateAnonymous, c.Check(context.Background()))
	assert.Nil(t, c.Identity())
	assert.False(t, c.Allowed("reader"))
}

func TestClient_ServerAcceptsToken(t *testing.T) {
	t.Parallel()

	user := sessionUser("reader")
	srv := acceptServer(t, user)

	c := NewClient(srv.URL)
	c.SetToken(issue(t, user, time.Hour), user)

	assert.Equal(t, StateVerified, c.Check(context.Background()))
	id := c.Identity()
	require.NotNil(t, id)
	assert.Equal(t, user.ID.String(), id.ID)
	assert.Equal(t, "Rin", id.DisplayName)
	assert.True(t, c.Allowed("reader"))
	assert.False(t, c.Allowed("admin"))
}

func TestClient_ServerRejectsUnexpiredToken_Degrades(t *testing.T) {
	t.Parallel()

	user := sessionUser("creator")
	srv := rejectServer(t)

	c := NewClient(srv.URL)
	c.SetToken(issue(t, user, time.Hour), user)

	assert.Equal(t, StateDegraded, c.Check(context.Background()))

	// Degraded identity comes from the locally decoded claims.
	id := c.Identity()
	require.NotNil(t, id)
	assert.Equal(t, user.ID.String(), id.ID)
	assert.Equal(t, user.Email, id.Email)
	assert.True(t, c.Allowed("creator"))
}

func TestClient_ServerRejectsExpiredToken_EndsSession(t *testing.T) {
	t.Parallel()

	user := sessionUser("reader")
	srv := rejectServer(t)

	c := NewClient(srv.URL)
	c.SetToken(issue(t, user, -time.Minute), user)

	assert.Equal(t, StateAnonymous, c.Check(context.Background()))
	assert.Nil(t, c.Identity())
	assert.False(t, c.Allowed("reader"))

	// The token was discarded, so a later recovery of the server cannot
	// resurrect the session.
	assert.Equal(t, StateAnonymous, c.Check(context.Background()))
}

func TestClient_ServerErrorKeepsVerifiedState(t *testing.T) {
	t.Parallel()

	user := sessionUser("reader")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	c.SetToken(issue(t, user, time.Hour), user)

	// A failing verifier is not a verdict on the token: the session stands.
	assert.Equal(t, StateVerified, c.Check(context.Background()))
	assert.True(t, c.Allowed("reader"))
}

func TestClient_ServerErrorKeepsExpiredToken(t *testing.T) {
	t.Parallel()

	user := sessionUser("reader")
	var failing atomic.Bool
	failing.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"valid": true, "user": user})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	c.SetToken(issue(t, user, -time.Minute), user)

	// A 502 must not discard the token, even an expired one; only a real
	// rejection may end the session.
	assert.Equal(t, StateVerified, c.Check(context.Background()))

	// Once the server recovers it can still rule on the stored token.
	failing.Store(false)
	assert.Equal(t, StateVerified, c.Check(context.Background()))
}

func TestClient_ServerUnreachableKeepsState(t *testing.T) {
	t.Parallel()

	user := sessionUser("reader")
	srv := acceptServer(t, user)

	c := NewClient(srv.URL)
	c.SetToken(issue(t, user, time.Hour), user)
	require.Equal(t, StateVerified, c.Check(context.Background()))

	srv.Close()
	assert.Equal(t, StateVerified, c.Check(context.Background()))
	assert.True(t, c.Allowed("reader"))
}

func TestClient_UnreachableDuringFirstCheckStaysAnonymous(t *testing.T) {
	t.Parallel()

	user := sessionUser("reader")

	// Nothing listens here, so the very first check cannot establish trust.
	// The token is installed as if restored from persisted storage, without
	// the verified state a fresh login would carry.
	c := NewClient("http://127.0.0.1:1")
	c.token = issue(t, user, time.Hour)

	assert.Equal(t, StateAnonymous, c.Check(context.Background()))
	assert.False(t, c.Allowed("reader"))
}

func TestClient_Logout(t *testing.T) {
	t.Parallel()

	user := sessionUser("reader")
	var logouts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/logout" {
			logouts.Add(1)
			json.NewEncoder(w).Encode(map[string]any{"success": true})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"valid": true, "user": user})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken(issue(t, user, time.Hour), user)

	c.Logout(context.Background())
	assert.Equal(t, int32(1), logouts.Load())
	assert.Equal(t, StateAnonymous, c.State())
	assert.Nil(t, c.Identity())

	// Logging out twice is harmless and sends no second request.
	c.Logout(context.Background())
	assert.Equal(t, int32(1), logouts.Load())
}

func TestClient_StartRunsPeriodicChecks(t *testing.T) {
	t.Parallel()

	user := sessionUser("reader")
	srv := acceptServer(t, user)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(srv.URL, WithInterval(10*time.Millisecond))
	c.SetToken(issue(t, user, time.Hour), user)
	c.Start(ctx)
	defer c.Close()

	require.Eventually(t, func() bool {
		return c.State() == StateVerified
	}, time.Second, 5*time.Millisecond)
}
