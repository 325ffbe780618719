package identity

import (
	"context"
	"sync"
)

// User is the identity as owned by the identity provider.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// State is delivered to listeners whenever a user signs in or out.
type State struct {
	User     User
	SignedIn bool
}

type Listener func(State)

type Provider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context, uid string) error
	UpdateDisplayName(ctx context.Context, uid, name string) error
	OnAuthStateChanged(listener Listener) (unsubscribe func())
}

// Broadcaster keeps the auth-state listeners of a provider. Listeners run
// synchronously on the goroutine that changed the state.
type Broadcaster struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func (b *Broadcaster) OnAuthStateChanged(listener Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.listeners == nil {
		b.listeners = make(map[int]Listener)
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *Broadcaster) Emit(state State) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(state)
	}
}
