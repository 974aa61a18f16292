package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/pkg/helpers"
)

// Storage keys, shared with the browser client
const (
	KeyLoggedIn  = "isLoggedIn"
	KeyUserData  = "userData"
	KeyAuthToken = "authToken"
)

const mirrorTimeout = 5 * time.Second

// Write persists s: all three keys when logged in with user data, none otherwise
func Write(ctx context.Context, st Storage, s State) error {
	if !s.LoggedIn || s.User == nil || s.Token == "" {
		return st.Delete(ctx, KeyLoggedIn, KeyUserData, KeyAuthToken)
	}
	raw, err := json.Marshal(s.User)
	if err != nil {
		return err
	}
	if err := st.Set(ctx, KeyLoggedIn, "true"); err != nil {
		return err
	}
	if err := st.Set(ctx, KeyUserData, string(raw)); err != nil {
		return err
	}
	return st.Set(ctx, KeyAuthToken, s.Token)
}

// Load reads a state back from storage. Missing or malformed entries
// yield a logged-out state.
func Load(ctx context.Context, st Storage) (State, error) {
	flag, _, err := st.Get(ctx, KeyLoggedIn)
	if err != nil {
		return State{}, err
	}
	token, _, err := st.Get(ctx, KeyAuthToken)
	if err != nil {
		return State{}, err
	}
	raw, ok, err := st.Get(ctx, KeyUserData)
	if err != nil {
		return State{}, err
	}
	s := State{LoggedIn: flag == "true" && token != "", Token: token}
	if ok && raw != "" {
		var u UserData
		if json.Unmarshal([]byte(raw), &u) == nil {
			s.User = &u
		}
	}
	if !s.LoggedIn {
		return State{}, nil
	}
	return s, nil
}

// Mirror returns an observer writing every state to st. Write errors are
// logged; the in-memory state stays authoritative.
func Mirror(st Storage, logger *logrus.Logger) Observer {
	return func(s State) {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := Write(ctx, st, s); err != nil {
			helpers.LogError(logger, "session mirror write failed", err, logrus.Fields{"logged_in": s.LoggedIn})
		}
	}
}
