package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/identitytoolkit/v1"
	"google.golang.org/api/option"
)

// FirebaseProvider uses the Admin SDK for account management and the Identity
// Toolkit REST API for password sign-in, which the Admin SDK does not offer.
type FirebaseProvider struct {
	Broadcaster

	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

func NewFirebaseProvider(ctx context.Context, app *firebase.App, apiKey string) (*FirebaseProvider, error) {
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identity toolkit client: %w", err)
	}

	return &FirebaseProvider{
		auth:    authClient,
		toolkit: toolkit,
	}, nil
}

func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password, displayName string) (*User, error) {

	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	record, err := p.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, fmt.Errorf("%w: %v", ErrEmailInUse, err)
		}
		return nil, Translate(err)
	}

	u := &User{UID: record.UID, Email: record.Email, DisplayName: record.DisplayName}
	p.Emit(State{User: *u, SignedIn: true})

	return u, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*User, error) {

	resp, err := p.toolkit.Accounts.SignInWithPassword(&identitytoolkit.GoogleCloudIdentitytoolkitV1SignInWithPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, Translate(err)
	}

	u := &User{UID: resp.LocalId, Email: resp.Email, DisplayName: resp.DisplayName}
	p.Emit(State{User: *u, SignedIn: true})

	return u, nil
}

// SignOut revokes the refresh tokens of uid so client sessions cannot be
// renewed.
func (p *FirebaseProvider) SignOut(ctx context.Context, uid string) error {

	if err := p.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return Translate(err)
	}

	p.Emit(State{User: User{UID: uid}, SignedIn: false})

	return nil
}

func (p *FirebaseProvider) UpdateDisplayName(ctx context.Context, uid, name string) error {

	_, err := p.auth.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).DisplayName(name))
	if err != nil {
		return Translate(err)
	}

	return nil
}
