package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-otp-auth/internal/application"
	"github.com/oksasatya/go-otp-auth/internal/domain/entity"
	"github.com/oksasatya/go-otp-auth/internal/domain/otp"
	repo "github.com/oksasatya/go-otp-auth/internal/domain/repository"
	"github.com/oksasatya/go-otp-auth/internal/interface/middleware"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	"github.com/oksasatya/go-otp-auth/pkg/mailer"
	"github.com/oksasatya/go-otp-auth/pkg/validation"
)

type memUsers struct {
	mu   sync.Mutex
	rows map[string]entity.User
	seq  int
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	m.seq++
	u.ID = "id-" + strconv.Itoa(m.seq)
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
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
	m.rows[u.ID] = *u
	return nil
}

type outbox struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (o *outbox) Dispatch(_ context.Context, job mailer.EmailJob) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.jobs = append(o.jobs, job)
	return nil
}

func (o *outbox) lastCode(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.jobs)
	code, _ := o.jobs[len(o.jobs)-1].Data["Code"].(string)
	require.NotEmpty(t, code)
	return code
}

type echoProvider struct{}

func (echoProvider) Reply(_ context.Context, message string) (string, error) {
	if message == "fail" {
		return "", errors.New("upstream 500")
	}
	return "echo: " + message, nil
}

// onceCooldown allows each key exactly once
type onceCooldown struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (c *onceCooldown) Allow(_ context.Context, key string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[key] {
		return false, nil
	}
	c.seen[key] = true
	return true, nil
}

type testServer struct {
	engine *gin.Engine
	users  *memUsers
	mail   *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	users := &memUsers{rows: map[string]entity.User{}}
	mail := &outbox{}
	jwt := &helpers.JWTManager{Secret: []byte("test"), TTL: 7 * 24 * time.Hour}
	log := helpers.NewNopLogger()

	authSvc := application.NewAuthService(users, jwt, mail, nil, log, nil)
	otpSvc := application.NewOTPService(users, otp.NewMachine(), mail, nil, log, nil)
	chatSvc := application.NewChatService(echoProvider{}, &onceCooldown{seen: map[string]bool{}}, 1500*time.Millisecond, time.Second, log)

	ah := NewAuthHandler(authSvc, otpSvc, jwt, helpers.NewCookie("", false), log)
	uh := NewUserHandler(authSvc, log)
	ch := NewChatHandler(chatSvc, log)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	api := r.Group("/api")
	api.GET("/health", Health)
	api.POST("/auth/register", ah.Register)
	api.POST("/auth/login", ah.Login)
	api.POST("/auth/logout", ah.Logout)
	api.POST("/auth/send-reset-otp", ah.SendResetOTP)
	api.POST("/auth/reset-password", ah.ResetPassword)
	auth := api.Group("/", middleware.Auth(jwt))
	auth.POST("/auth/send-verify-otp", ah.SendVerifyOTP)
	auth.POST("/auth/verify-account", ah.VerifyAccount)
	auth.GET("/auth/is-auth", ah.IsAuthenticated)
	auth.GET("/user/data", uh.GetUserData)
	auth.POST("/chat", ch.Send)

	return &testServer{engine: r, users: users, mail: mail}
}

type result struct {
	code int
	body map[string]any
	resp *http.Response
}

func (r result) message() string {
	s, _ := r.body["message"].(string)
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) result {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := result{code: w.Code, resp: w.Result()}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out.body), w.Body.String())
	return out
}

func (s *testServer) register(t *testing.T, name, email, password string) string {
	t.Helper()
	res := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": name, "email": email, "password": password})
	require.Equal(t, http.StatusCreated, res.code, res.body)
	tok, _ := res.body["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestRegisterResponse(t *testing.T) {
	s := newTestServer(t)
	res := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ann", "email": "Ann@X.com", "password": "secret123"})

	require.Equal(t, http.StatusCreated, res.code)
	assert.Equal(t, true, res.body["success"])
	assert.NotEmpty(t, res.body["request_id"])
	assert.Equal(t, map[string]any{"name": "Ann", "email": "ann@x.com"}, res.body["user"])

	var cookie *http.Cookie
	for _, ck := range res.resp.Cookies() {
		if ck.Name == helpers.TokenCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, res.body["token"], cookie.Value)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ann", "ann@x.com", "secret123")

	tests := []struct {
		name string
		body map[string]string
		code int
		msg  string
	}{
		{"missing name", map[string]string{"email": "bob@x.com", "password": "secret123"}, http.StatusBadRequest, "Missing Details"},
		{"bad email", map[string]string{"name": "Bob", "email": "bob-at-x", "password": "secret123"}, http.StatusBadRequest, "Invalid email format"},
		{"short password", map[string]string{"name": "Bob", "email": "bob@x.com", "password": "short"}, http.StatusBadRequest, "Password must be at least 8 characters long"},
		{"duplicate", map[string]string{"name": "Ann2", "email": "ANN@x.com", "password": "secret123"}, http.StatusConflict, "User already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.code, res.code)
			assert.Equal(t, tt.msg, res.message())
			assert.Equal(t, false, res.body["success"])
		})
	}
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ann", "ann@x.com", "secret123")

	res := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@x.com", "password": "secret123"})
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "User not found", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "Incorrect password", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com"})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Email and Password are required", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, res.code)
	tok := res.body["token"].(string)

	res = s.do(t, http.MethodGet, "/api/auth/is-auth", tok, nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "User is authenticated.", res.message())

	res = s.do(t, http.MethodGet, "/api/auth/is-auth", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)

	res = s.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Logged Out", res.message())
}

func TestVerifyFlow(t *testing.T) {
	s := newTestServer(t)
	tok := s.register(t, "Ann", "ann@x.com", "secret123")

	res := s.do(t, http.MethodGet, "/api/user/data", tok, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, map[string]any{"name": "Ann", "isAccountVerified": false}, res.body["userData"])

	res = s.do(t, http.MethodPost, "/api/auth/verify-account", tok, map[string]string{"otp": "123456"})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "OTP has expired or is missing. A new OTP has been sent to your email.", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/send-verify-otp", tok, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Verification OTP Sent to Email", res.message())
	code := s.mail.lastCode(t)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	res = s.do(t, http.MethodPost, "/api/auth/verify-account", tok, map[string]string{"otp": wrong})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Invalid OTP", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/verify-account", tok, map[string]string{"otp": code})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Email verified successfully", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/verify-account", tok, map[string]string{"otp": code})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Account already verified", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/send-verify-otp", tok, nil)
	assert.Equal(t, "Account already verified", res.message())

	res = s.do(t, http.MethodGet, "/api/user/data", tok, nil)
	assert.Equal(t, map[string]any{"name": "Ann", "isAccountVerified": true}, res.body["userData"])
}

func TestResetFlow(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ann", "ann@x.com", "secret123")

	res := s.do(t, http.MethodPost, "/api/auth/send-reset-otp", "", map[string]string{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, res.code)

	res = s.do(t, http.MethodPost, "/api/auth/send-reset-otp", "", map[string]string{})
	assert.Equal(t, "Email is required", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/send-reset-otp", "", map[string]string{"email": "ann@x.com"})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "OTP sent to your email", res.message())
	code := s.mail.lastCode(t)

	u, err := s.users.GetByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	hashBefore := u.Password

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	res = s.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"email": "ann@x.com", "otp": wrong, "newPassword": "newpass12"})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Invalid OTP", res.message())
	u, _ = s.users.GetByEmail(context.Background(), "ann@x.com")
	assert.Equal(t, hashBefore, u.Password)

	res = s.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"email": "ann@x.com", "otp": code, "newPassword": "short"})
	assert.Equal(t, "Password must be at least 8 characters long", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"email": "ann@x.com", "otp": code, "newPassword": "newpass12"})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Password has been reset successfully", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"email": "ann@x.com", "otp": code, "newPassword": "another12"})
	assert.Equal(t, "Invalid OTP", res.message())

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com", "password": "newpass12"})
	assert.Equal(t, http.StatusOK, res.code)
	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@x.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, res.code)
}

func TestChat(t *testing.T) {
	s := newTestServer(t)
	tok := s.register(t, "Ann", "ann@x.com", "secret123")

	res := s.do(t, http.MethodPost, "/api/chat", tok, map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = s.do(t, http.MethodPost, "/api/chat", tok, map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "echo: hello", res.body["reply"])

	res = s.do(t, http.MethodPost, "/api/chat", tok, map[string]string{"message": "again"})
	assert.Equal(t, http.StatusTooManyRequests, res.code)
	assert.Equal(t, "Please wait before sending another message.", res.message())

	other := s.register(t, "Bob", "bob@x.com", "secret123")
	res = s.do(t, http.MethodPost, "/api/chat", other, map[string]string{"message": "fail"})
	assert.Equal(t, http.StatusBadGateway, res.code)
	assert.Equal(t, "Failed to fetch response from chat provider.", res.message())
}

func TestInvalidJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request payload")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	res := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "ok", res.message())
}
