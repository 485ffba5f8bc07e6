// Package docstore reads attendance data from, and writes reconciliation
// documents to, Cloud Firestore.
package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Collection names used by the attendance web application.
const (
	SessionsCollection        = "attendance"
	StudentsCollection        = "students"
	ReconciliationsCollection = "absenceNotifications"
)

// ClientConfig selects the project and credentials.
type ClientConfig struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string
}

// NewClient initialises the Firebase app and returns its Firestore client.
// Called once at process start; the client is passed to the repositories.
func NewClient(ctx context.Context, cfg ClientConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firestore client: %w", err)
	}
	return client, nil
}
