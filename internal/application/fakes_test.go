package application

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/oksasatya/go-otp-auth/internal/domain/entity"
	"github.com/oksasatya/go-otp-auth/internal/domain/otp"
	repo "github.com/oksasatya/go-otp-auth/internal/domain/repository"
	"github.com/oksasatya/go-otp-auth/pkg/mailer"
)

// memUsers stores copies so callers cannot mutate persisted state without Update
type memUsers struct {
	mu      sync.Mutex
	byID    map[string]entity.User
	nextID  int
	updates int
	failGet error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]entity.User{}}
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	m.nextID++
	u.ID = "u" + strconv.Itoa(m.nextID)
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	m.updates++
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) stored(id string) entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, job mailer.EmailJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

func (d *recordingDispatcher) last() mailer.EmailJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.jobs) == 0 {
		return mailer.EmailJob{}
	}
	return d.jobs[len(d.jobs)-1]
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []repo.AuditEntry
}

func (a *recordingAudit) Insert(_ context.Context, e repo.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// scriptedMachine hands out codes in order, then fails
func scriptedMachine(clock *testClock, codes ...string) *otp.Machine {
	i := 0
	return &otp.Machine{
		Now: clock.Now,
		Generate: func() (string, error) {
			if i >= len(codes) {
				return "", errors.New("out of codes")
			}
			c := codes[i]
			i++
			return c, nil
		},
	}
}
