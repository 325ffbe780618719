package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"resiliencehub/internal/identity"
	"resiliencehub/internal/models"
	"resiliencehub/internal/user"
	"resiliencehub/pkg/cache"
	"resiliencehub/pkg/constants"
	"resiliencehub/pkg/token"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSignedOut    = errors.New("session has been signed out")
)

// Cache is the optional shared store for profiles and sign-out markers.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Result struct {
	User      identity.User `json:"user"`
	Profile   *user.Profile `json:"profile"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
}

type session struct {
	user      identity.User
	profile   *user.Profile
	profileAt time.Time
	expiresAt time.Time
}

// Gate tracks who is signed in and the profile fetched for them. It follows
// the identity provider's auth-state changes between Start and Close.
type Gate struct {
	provider identity.Provider
	users    user.UserRepository
	cache    Cache
	tokens   *token.Manager
	logger   *zap.SugaredLogger
	cacheTTL time.Duration
	validate *validator.Validate
	now      func() time.Time

	mu          sync.RWMutex
	sessions    map[string]*session
	signedOut   map[string]int64
	unsubscribe func()
}

func NewGate(provider identity.Provider, users user.UserRepository, c Cache, tokens *token.Manager, logger *zap.SugaredLogger, cacheTTL time.Duration) *Gate {
	return &Gate{
		provider:  provider,
		users:     users,
		cache:     c,
		tokens:    tokens,
		logger:    logger,
		cacheTTL:  cacheTTL,
		validate:  newValidator(),
		now:       time.Now,
		sessions:  make(map[string]*session),
		signedOut: make(map[string]int64),
	}
}

func (g *Gate) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.unsubscribe != nil {
		return
	}
	g.unsubscribe = g.provider.OnAuthStateChanged(g.handleState)
}

func (g *Gate) Close() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (g *Gate) handleState(state identity.State) {
	uid := state.User.UID

	if !state.SignedIn {
		g.mu.Lock()
		delete(g.sessions, uid)
		g.mu.Unlock()
		g.dropCachedProfile(context.Background(), uid)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := g.users.FindByID(ctx, uid)
	if err != nil {
		g.logger.Errorw("Failed to fetch user profile", "uid", uid, "error", err)
		profile = nil
	}

	now := g.now()
	g.mu.Lock()
	g.sessions[uid] = &session{user: state.User, profile: profile, profileAt: now, expiresAt: now.Add(g.tokens.TTL())}
	g.mu.Unlock()

	if profile != nil {
		g.cacheProfile(ctx, profile)
	}
}

func (g *Gate) Register(ctx context.Context, req *RegisterRequest) (*Result, error) {

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(g.validate, req); err != nil {
		return nil, err
	}

	u, err := g.provider.CreateAccount(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}

	userType := req.UserType
	if userType == "" {
		userType = constants.UserTypeUser
	}

	now := time.Now()
	profile := &user.Profile{
		UID:              u.UID,
		Name:             req.Name,
		Email:            u.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		UserType:         userType,
		CheckInHistory:   []models.CheckInRecord{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := g.users.Create(ctx, profile); err != nil {
		g.logger.Errorw("Account created but profile not saved", "uid", u.UID, "error", err)
		return nil, fmt.Errorf("save profile: %w", err)
	}

	g.storeProfile(ctx, *u, profile)

	return g.issue(*u, profile)
}

func (g *Gate) Login(ctx context.Context, req *LoginRequest) (*Result, error) {

	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(g.validate, req); err != nil {
		return nil, err
	}

	u, err := g.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := g.Profile(ctx, u.UID)
	if err != nil {
		g.logger.Warnw("Signed in without profile", "uid", u.UID, "error", err)
		profile = nil
	}

	return g.issue(*u, profile)
}

func (g *Gate) Logout(ctx context.Context, uid string) error {

	if err := g.provider.SignOut(ctx, uid); err != nil {
		return err
	}

	now := g.now().UnixMilli()

	g.mu.Lock()
	delete(g.sessions, uid)
	g.signedOut[uid] = now
	g.mu.Unlock()

	if g.cache != nil {
		if err := g.cache.Set(ctx, signedOutKey(uid), now, g.tokens.TTL()); err != nil {
			g.logger.Warnw("Failed to record sign-out", "uid", uid, "error", err)
		}
	}
	g.dropCachedProfile(ctx, uid)

	return nil
}

func (g *Gate) UpdateProfile(ctx context.Context, uid string, req *UpdateProfileRequest) (*user.Profile, error) {

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validateStruct(g.validate, req); err != nil {
		return nil, err
	}

	current, err := g.Profile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrUserNotFound
	}

	fields := map[string]interface{}{}
	updated := *current
	if req.Name != nil {
		fields["name"] = *req.Name
		updated.Name = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
		updated.Phone = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
		updated.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		fields["emergency_contact"] = *req.EmergencyContact
		updated.EmergencyContact = *req.EmergencyContact
	}

	if len(fields) == 0 {
		return current, nil
	}

	if err := g.users.Merge(ctx, uid, fields); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now()

	if req.Name != nil && *req.Name != current.Name {
		if err := g.provider.UpdateDisplayName(ctx, uid, *req.Name); err != nil {
			g.logger.Warnw("Failed to update display name", "uid", uid, "error", err)
		}
	}

	g.storeProfile(ctx, identity.User{UID: uid, Email: updated.Email, DisplayName: updated.Name}, &updated)

	return &updated, nil
}

// CurrentUser reports the identity of uid while it holds a session here.
func (g *Gate) CurrentUser(uid string) (identity.User, bool) {
	s, ok := g.liveSession(uid)
	if !ok {
		return identity.User{}, false
	}
	return s.user, true
}

func (g *Gate) liveSession(uid string) (session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s, ok := g.sessions[uid]
	if !ok || !g.now().Before(s.expiresAt) {
		return session{}, false
	}
	return *s, true
}

// Profile returns the profile of uid from the session, the shared cache or
// the store, in that order. A session profile older than the cache TTL is
// skipped. A nil profile with a nil error means unknown.
func (g *Gate) Profile(ctx context.Context, uid string) (*user.Profile, error) {

	s, ok := g.liveSession(uid)
	if ok && s.profile != nil && (g.cacheTTL <= 0 || g.now().Sub(s.profileAt) < g.cacheTTL) {
		return s.profile, nil
	}

	if g.cache != nil {
		var cached user.Profile
		err := g.cache.Get(ctx, profileKey(uid), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			g.logger.Warnw("Profile cache read failed", "uid", uid, "error", err)
		}
	}

	profile, err := g.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	g.storeProfile(ctx, identity.User{UID: uid, Email: profile.Email, DisplayName: profile.Name}, profile)

	return profile, nil
}

// CheckInHistory reads the history from the store, most recent first.
func (g *Gate) CheckInHistory(ctx context.Context, uid string) ([]models.CheckInRecord, error) {

	profile, err := g.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return []models.CheckInRecord{}, nil
	}

	history := make([]models.CheckInRecord, len(profile.CheckInHistory))
	for i, rec := range profile.CheckInHistory {
		history[len(history)-1-i] = rec
	}

	return history, nil
}

// Invalidate forgets the cached profile of uid so the next read goes to the store.
func (g *Gate) Invalidate(ctx context.Context, uid string) {
	g.mu.Lock()
	if s, ok := g.sessions[uid]; ok {
		s.profile = nil
	}
	g.mu.Unlock()

	g.dropCachedProfile(ctx, uid)
}

// Verify parses a session token and rejects tokens issued before the user
// last signed out.
func (g *Gate) Verify(ctx context.Context, tokenString string) (*token.Claims, error) {

	claims, err := g.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	signedOutAt, ok := g.signedOutAt(ctx, claims.Subject)
	if ok && claims.IssuedMilli() <= signedOutAt {
		return nil, ErrSignedOut
	}

	return claims, nil
}

// Sweep drops sessions past the token lifetime and sign-out markers that no
// unexpired token can predate.
func (g *Gate) Sweep() int {
	now := g.now()
	horizon := now.Add(-g.tokens.TTL()).UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()

	dropped := 0
	for uid, s := range g.sessions {
		if !now.Before(s.expiresAt) {
			delete(g.sessions, uid)
			dropped++
		}
	}
	for uid, at := range g.signedOut {
		if at < horizon {
			delete(g.signedOut, uid)
		}
	}

	return dropped
}

func (g *Gate) signedOutAt(ctx context.Context, uid string) (int64, bool) {
	g.mu.RLock()
	at, ok := g.signedOut[uid]
	g.mu.RUnlock()
	if ok {
		return at, true
	}

	if g.cache == nil {
		return 0, false
	}

	var shared int64
	if err := g.cache.Get(ctx, signedOutKey(uid), &shared); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			g.logger.Warnw("Sign-out marker read failed", "uid", uid, "error", err)
		}
		return 0, false
	}

	return shared, true
}

func (g *Gate) issue(u identity.User, profile *user.Profile) (*Result, error) {
	userType := constants.UserTypeUser
	if profile != nil && profile.UserType != "" {
		userType = profile.UserType
	}

	signed, claims, err := g.tokens.Issue(u.UID, userType)
	if err != nil {
		return nil, err
	}

	return &Result{
		User:      u,
		Profile:   profile,
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (g *Gate) storeProfile(ctx context.Context, u identity.User, profile *user.Profile) {
	now := g.now()
	g.mu.Lock()
	if s, ok := g.sessions[u.UID]; ok {
		s.profile = profile
		s.profileAt = now
		s.expiresAt = now.Add(g.tokens.TTL())
	} else {
		g.sessions[u.UID] = &session{user: u, profile: profile, profileAt: now, expiresAt: now.Add(g.tokens.TTL())}
	}
	g.mu.Unlock()

	g.cacheProfile(ctx, profile)
}

func (g *Gate) cacheProfile(ctx context.Context, profile *user.Profile) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, profileKey(profile.UID), profile, g.cacheTTL); err != nil {
		g.logger.Warnw("Failed to cache profile", "uid", profile.UID, "error", err)
	}
}

func (g *Gate) dropCachedProfile(ctx context.Context, uid string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Delete(ctx, profileKey(uid)); err != nil {
		g.logger.Warnw("Failed to drop cached profile", "uid", uid, "error", err)
	}
}

func profileKey(uid string) string {
	return "profile:" + uid
}

func signedOutKey(uid string) string {
	return "signed_out_ms:" + uid
}
