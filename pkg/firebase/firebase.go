package firebase

import (
	"context"
	"fmt"

	"resiliencehub/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// SetUpFireBase initialises the Firebase app shared by the identity provider
// and the alert broadcaster.
func SetUpFireBase(ctx context.Context, cfg *config.Config) (*firebase.App, *messaging.Client, error) {

	var opts []option.ClientOption
	if cfg.FirebaseCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
	}

	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return app, client, nil
}
