package db

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// HashString hashes a given string using SHA-256 and returns its hex representation.
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// InitFirestore initializes a Firestore client from base64 encoded service
// account credentials.
func InitFirestore(ctx context.Context, encodedCreds string) (*firestore.Client, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Firestore credentials: %w", err)
	}

	// Initialize Firebase App
	opt := option.WithCredentialsJSON(creds)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}
	return client, nil
}

// Store persists screenings in Firestore.
type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

// Close closes the underlying Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
