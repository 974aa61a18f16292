// Package session mirrors the authenticated state of a client of the auth
// API. State changes go through a pure reducer; persistence to durable
// storage is an observer of the store.
package session

// UserData is the profile returned by GET /api/user/data
type UserData struct {
	Name              string `json:"name"`
	IsAccountVerified bool   `json:"isAccountVerified"`
}

// State is the client view of the session
type State struct {
	LoggedIn bool
	User     *UserData
	Token    string
}

// Action is one state transition
type Action interface {
	isAction()
}

// LoggedIn follows a successful login or registration
type LoggedIn struct {
	Token string
	User  *UserData
}

// ProfileLoaded carries fresh user data for an authenticated session
type ProfileLoaded struct {
	User *UserData
}

// LoggedOut clears the session
type LoggedOut struct{}

// Restored replaces the state with what was read back from storage
type Restored struct {
	State State
}

func (LoggedIn) isAction()      {}
func (ProfileLoaded) isAction() {}
func (LoggedOut) isAction()     {}
func (Restored) isAction()      {}

func copyUser(u *UserData) *UserData {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// Reduce returns the state after applying a to s. It does not mutate s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoggedIn:
		if a.Token == "" {
			return State{}
		}
		return State{LoggedIn: true, Token: a.Token, User: copyUser(a.User)}
	case ProfileLoaded:
		if s.Token == "" {
			return State{}
		}
		return State{LoggedIn: true, Token: s.Token, User: copyUser(a.User)}
	case LoggedOut:
		return State{}
	case Restored:
		if a.State.Token == "" || !a.State.LoggedIn {
			return State{}
		}
		return State{LoggedIn: true, Token: a.State.Token, User: copyUser(a.State.User)}
	}
	return s
}
