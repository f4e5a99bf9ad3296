package database

import (
	"context"
	"fmt"
)

// Unavailable is a Store without a connection. Every operation fails with ErrUnavailable.
type Unavailable struct {
	cause error
}

// NewUnavailable returns a store that was never connected. A nil cause means the
// connection was not configured; a non-nil cause is why it could not be created.
func NewUnavailable(cause error) *Unavailable {
	return &Unavailable{cause: cause}
}

func (u *Unavailable) err() error {
	if u.cause == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, u.cause)
}

func (u *Unavailable) CreateDocument(_ context.Context, _ string, _ any) (string, error) {
	return "", u.err()
}

func (u *Unavailable) GetDocuments(_ context.Context, _ string, _ int) ([]Document, error) {
	return nil, u.err()
}

func (u *Unavailable) Status(_ context.Context) Status {
	if u.cause == nil {
		return Status{State: StateNotInitialized}
	}
	return Status{State: StateNotAvailable, Err: u.cause}
}

func (u *Unavailable) Close(_ context.Context) error { return nil }
