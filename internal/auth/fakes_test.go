package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"resiliencehub/internal/identity"
	"resiliencehub/internal/models"
	"resiliencehub/internal/user"
	"resiliencehub/pkg/cache"
	"resiliencehub/pkg/token"

	"go.uber.org/zap"
)

type account struct {
	user     identity.User
	password string
}

type fakeProvider struct {
	identity.Broadcaster

	mu          sync.Mutex
	accounts    map[string]*account
	nextUID     int
	created     int
	renamed     map[string]string
	signedOutOf []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts: make(map[string]*account),
		renamed:  make(map[string]string),
	}
}

func (p *fakeProvider) CreateAccount(_ context.Context, email, password, displayName string) (*identity.User, error) {
	p.mu.Lock()
	if _, ok := p.accounts[email]; ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: EMAIL_EXISTS", identity.ErrEmailInUse)
	}
	p.nextUID++
	p.created++
	acc := &account{
		user:     identity.User{UID: fmt.Sprintf("uid-%d", p.nextUID), Email: email, DisplayName: displayName},
		password: password,
	}
	p.accounts[email] = acc
	p.mu.Unlock()

	u := acc.user
	p.Emit(identity.State{User: u, SignedIn: true})
	return &u, nil
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (*identity.User, error) {
	p.mu.Lock()
	acc, ok := p.accounts[email]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: EMAIL_NOT_FOUND", identity.ErrUserNotFound)
	}
	if acc.password != password {
		return nil, fmt.Errorf("%w: INVALID_PASSWORD", identity.ErrWrongPassword)
	}

	u := acc.user
	p.Emit(identity.State{User: u, SignedIn: true})
	return &u, nil
}

func (p *fakeProvider) SignOut(_ context.Context, uid string) error {
	p.mu.Lock()
	p.signedOutOf = append(p.signedOutOf, uid)
	p.mu.Unlock()

	p.Emit(identity.State{User: identity.User{UID: uid}, SignedIn: false})
	return nil
}

func (p *fakeProvider) UpdateDisplayName(_ context.Context, uid, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renamed[uid] = name
	return nil
}

type fakeUsers struct {
	mu       sync.Mutex
	profiles map[string]*user.Profile
	findErr  error
	finds    int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{profiles: make(map[string]*user.Profile)}
}

func (r *fakeUsers) Create(_ context.Context, profile *user.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.UID] = &cp
	return nil
}

func (r *fakeUsers) FindByID(_ context.Context, uid string) (*user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.profiles[uid]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeUsers) FindByIDs(ctx context.Context, uids []string) ([]*user.Profile, error) {
	out := make([]*user.Profile, 0, len(uids))
	for _, uid := range uids {
		p, err := r.FindByID(ctx, uid)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeUsers) Merge(_ context.Context, uid string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		p = &user.Profile{UID: uid}
		r.profiles[uid] = p
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "name":
			p.Name = s
		case "phone":
			p.Phone = s
		case "address":
			p.Address = s
		case "emergency_contact":
			p.EmergencyContact = s
		}
	}
	return nil
}

func (r *fakeUsers) RecordCheckIn(_ context.Context, uid string, record models.CheckInRecord, current *models.CurrentShelter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return user.ErrProfileNotFound
	}
	p.CheckInHistory = append(p.CheckInHistory, record)
	p.CurrentShelter = current
	return nil
}

func (r *fakeUsers) RecordCheckOut(ctx context.Context, uid string, record models.CheckInRecord) error {
	return r.RecordCheckIn(ctx, uid, record, nil)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	data, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func newTestGate(provider identity.Provider, users user.UserRepository, c Cache) *Gate {
	g := NewGate(provider, users, c, token.NewManager("test-secret", time.Hour), zap.NewNop().Sugar(), time.Minute)
	g.Start()
	return g
}
