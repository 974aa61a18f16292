package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Validator re-checks a restored credential against the server
type Validator interface {
	IsAuth(ctx context.Context, token string) error
	UserData(ctx context.Context, token string) (*UserData, error)
}

// Bootstrap restores the persisted state into store, then re-validates it:
// no token logs out, is-auth followed by user/data refreshes the profile,
// any failure logs out. The returned error explains a forced logout.
func Bootstrap(ctx context.Context, store *Store, st Storage, v Validator) error {
	restored, err := Load(ctx, st)
	if err != nil {
		store.Dispatch(LoggedOut{})
		return fmt.Errorf("restore session: %w", err)
	}
	store.Dispatch(Restored{State: restored})

	if restored.Token == "" {
		store.Dispatch(LoggedOut{})
		return nil
	}
	if err := v.IsAuth(ctx, restored.Token); err != nil {
		store.Dispatch(LoggedOut{})
		return fmt.Errorf("session no longer valid: %w", err)
	}
	user, err := v.UserData(ctx, restored.Token)
	if err != nil {
		store.Dispatch(LoggedOut{})
		return fmt.Errorf("load user data: %w", err)
	}
	store.Dispatch(ProfileLoaded{User: user})
	return nil
}

// Open builds a store mirrored to st and bootstraps it
func Open(ctx context.Context, st Storage, v Validator, logger *logrus.Logger) (*Store, error) {
	store := NewStore()
	store.Subscribe(Mirror(st, logger))
	return store, Bootstrap(ctx, store, st, v)
}
