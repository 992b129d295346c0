// Package session implements the client side of the bearer-token session:
// it holds the token, re-validates it against the verify endpoint on a fixed
// interval, and degrades to local, signature-less inspection when the server
// rejects the token or is unreachable.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/mannaworks/manna-server/internal/auth"
	"github.com/mannaworks/manna-server/internal/models"
)

// State tags the session mode so callers (and tests) can tell a fully
// verified session from a degraded one.
type State string

const (
	// StateAnonymous means no usable session exists.
	StateAnonymous State = "anonymous"
	// StateChecking is the transient state during the first validation.
	StateChecking State = "checking"
	// StateVerified means the server accepted the token on the last check.
	StateVerified State = "verified"
	// StateDegraded means the server rejected the token but its locally
	// decoded claims are still unexpired. The session continues on local
	// trust only. This can only extend a session a prior successful login
	// established, never create one.
	StateDegraded State = "degraded"
)

// Identity is the locally held view of the signed-in user.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Roles       []string
}

// DefaultInterval is how often the stored token is re-validated.
const DefaultInterval = 5 * time.Minute

// Client owns a token plus identity state and keeps them fresh. All fields
// are guarded by mu; one Client must not be shared by multiple sessions.
type Client struct {
	baseURL  string
	http     *http.Client
	interval time.Duration

	mu       sync.RWMutex
	state    State
	token    string
	identity *Identity

	stop chan struct{}
	once sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithInterval changes the re-validation interval.
func WithInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

// NewClient creates a session client for the given API base URL, e.g.
// "https://manna.example.com".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		interval: DefaultInterval,
		state:    StateAnonymous,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs a token obtained from login or registration and marks the
// session verified with the given identity. The next Check re-validates it.
func (c *Client) SetToken(token string, user models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.state = StateVerified
	c.identity = &Identity{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       user.RoleSet(),
	}
}

// Start begins the periodic re-validation loop: one immediate check, then one
// per interval until Close or context cancellation.
func (c *Client) Start(ctx context.Context) {
	go func() {
		c.Check(ctx)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Check(ctx)
			case <-c.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close stops the re-validation loop. The stored token is kept; Logout
// discards it.
func (c *Client) Close() {
	c.once.Do(func() { close(c.stop) })
}

type verifyResponse struct {
	Valid bool        `json:"valid"`
	User  models.User `json:"user"`
}

// Check performs one validation pass and returns the resulting state.
//
//   - Server accepts the token: verified, identity replaced with the server's
//     record.
//   - Server rejects the token: the claims segment is decoded locally without
//     a signature check; unexpired claims keep the session alive in degraded
//     mode, expired ones end it.
//   - Server unreachable: state unchanged, keeping the previous session
//     through transient connectivity loss.
func (c *Client) Check(ctx context.Context) State {
	c.mu.Lock()
	token := c.token
	if token == "" {
		c.state = StateAnonymous
		c.identity = nil
		c.mu.Unlock()
		return StateAnonymous
	}
	if c.state == StateAnonymous {
		c.state = StateChecking
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/verify", nil)
	if err != nil {
		return c.State()
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		// Unreachable: keep whatever session we had.
		return c.trustChecked()
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var body verifyResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Valid {
			c.mu.Lock()
			c.state = StateVerified
			c.identity = &Identity{
				ID:          body.User.ID.String(),
				Email:       body.User.Email,
				DisplayName: body.User.DisplayName,
				Roles:       body.User.RoleSet(),
			}
			c.mu.Unlock()
			return StateVerified
		}
	}

	// Only a 4xx is a verdict on the token. Anything else (5xx, odd 2xx
	// bodies) is a server fault and is handled like an unreachable server:
	// the previous session stands and the token is kept.
	if resp.StatusCode < 400 || resp.StatusCode >= 500 {
		return c.trustChecked()
	}

	// Rejected: fall back to decode-only trust, bounded by the embedded
	// expiry.
	claims, err := auth.DecodeUnverified(token)
	if err == nil && claims.ExpiresAt != nil && claims.ExpiresAt.After(time.Now()) {
		c.mu.Lock()
		c.state = StateDegraded
		c.identity = &Identity{
			ID:          claims.Subject,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
			Roles:       claims.RoleSet(),
		}
		c.mu.Unlock()
		return StateDegraded
	}

	c.mu.Lock()
	c.token = ""
	c.state = StateAnonymous
	c.identity = nil
	c.mu.Unlock()
	return StateAnonymous
}

// trustChecked resolves the transient checking state after an unreachable
// verifier: a session that was only being established stays anonymous.
func (c *Client) trustChecked() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateChecking {
		c.state = StateAnonymous
	}
	return c.state
}

// Logout tells the server (best-effort, the endpoint always succeeds) and
// discards the local token.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	token := c.token
	c.token = ""
	c.state = StateAnonymous
	c.identity = nil
	c.mu.Unlock()

	if token == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if resp, err := c.http.Do(req); err == nil {
		resp.Body.Close()
	}
}

// State returns the current session mode.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Identity returns a copy of the current identity, or nil when anonymous.
func (c *Client) Identity() *Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return nil
	}
	cp := *c.identity
	cp.Roles = append([]string(nil), c.identity.Roles...)
	return &cp
}

// Allowed reports whether the current identity satisfies a required-role set,
// using the same intersection rule as the server.
func (c *Client) Allowed(required ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == StateAnonymous || c.state == StateChecking || c.identity == nil {
		return false
	}
	return auth.RolesIntersect(c.identity.Roles, required)
}
