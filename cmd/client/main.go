package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/oksasatya/go-otp-auth/internal/client/session"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
)

const usage = `commands (a missing password is prompted for):
  register <name> <email> [password]
  login <email> [password]
  logout
  me
  send-verify
  verify <otp>
  send-reset <email>
  reset <email> <otp> [newPassword]
  chat <message...>
  state
  quit`

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "go-otp-auth", "session.json")
}

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("api", envOr("API_URL", "http://localhost:4000"), "auth API base URL")
	file := flag.String("session-file", defaultSessionFile(), "session file")
	redisAddr := flag.String("redis", "", "keep the session in Redis at this address instead of a file")
	flag.Parse()

	logger := helpers.NewLogger("otp-auth-client", "production")
	logger.SetOutput(os.Stderr)
	ctx := context.Background()

	var store session.Storage = session.NewFileStorage(*file)
	if *redisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, *redisAddr, os.Getenv("REDIS_PASSWORD"), 0)
		if err != nil {
			logger.WithError(err).Fatal("redis unavailable")
		}
		defer func() { _ = rdb.Close() }()
		store = session.NewRedisStorage(rdb, "otp-auth:session:")
	}

	api := session.NewClient(*baseURL, 30*time.Second)
	sess, err := session.Open(ctx, store, api, logger)
	if err != nil {
		logger.WithError(err).Warn("restored session discarded")
	}
	r := &repl{api: api, sess: sess, logger: logger}
	r.printState()
	fmt.Println(usage)

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		if !r.run(ctx, strings.Fields(sc.Text())) {
			return
		}
	}
}

// passwordArg returns args[i], or reads it from the terminal without echo
func passwordArg(args []string, i int, label string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password argument required when stdin is not a terminal")
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type repl struct {
	api    *session.Client
	sess   *session.Store
	logger *logrus.Logger
}

func (r *repl) printState() {
	s := r.sess.State()
	if !s.LoggedIn {
		fmt.Println("not logged in")
		return
	}
	if s.User == nil {
		fmt.Println("logged in")
		return
	}
	fmt.Printf("logged in as %s (verified: %v)\n", s.User.Name, s.User.IsAccountVerified)
}

// loggedIn stores the token then loads the profile, as the web client does
func (r *repl) loggedIn(ctx context.Context, token string) error {
	r.sess.Dispatch(session.LoggedIn{Token: token})
	u, err := r.api.UserData(ctx, token)
	if err != nil {
		return err
	}
	r.sess.Dispatch(session.ProfileLoaded{User: u})
	return nil
}

func (r *repl) token() string { return r.sess.State().Token }

func (r *repl) run(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	var (
		msg string
		err error
	)
	switch cmd := args[0]; {
	case cmd == "quit" || cmd == "exit":
		return false
	case cmd == "state":
	case cmd == "register" && (len(args) == 3 || len(args) == 4):
		var pw string
		if pw, err = passwordArg(args, 3, "password: "); err == nil {
			var res *session.AuthReply
			if res, err = r.api.Register(ctx, args[1], args[2], pw); err == nil {
				msg, err = res.Message, r.loggedIn(ctx, res.Token)
			}
		}
	case cmd == "login" && (len(args) == 2 || len(args) == 3):
		var pw string
		if pw, err = passwordArg(args, 2, "password: "); err == nil {
			var res *session.AuthReply
			if res, err = r.api.Login(ctx, args[1], pw); err == nil {
				msg, err = res.Message, r.loggedIn(ctx, res.Token)
			}
		}
	case cmd == "logout":
		msg, err = r.api.Logout(ctx, r.token())
		r.sess.Dispatch(session.LoggedOut{})
	case cmd == "me":
		var u *session.UserData
		if u, err = r.api.UserData(ctx, r.token()); err == nil {
			r.sess.Dispatch(session.ProfileLoaded{User: u})
		}
	case cmd == "send-verify":
		msg, err = r.api.SendVerifyOTP(ctx, r.token())
	case cmd == "verify" && len(args) == 2:
		if msg, err = r.api.VerifyAccount(ctx, r.token(), args[1]); err == nil {
			var u *session.UserData
			if u, err = r.api.UserData(ctx, r.token()); err == nil {
				r.sess.Dispatch(session.ProfileLoaded{User: u})
			}
		}
	case cmd == "send-reset" && len(args) == 2:
		msg, err = r.api.SendResetOTP(ctx, args[1])
	case cmd == "reset" && (len(args) == 3 || len(args) == 4):
		var pw string
		if pw, err = passwordArg(args, 3, "new password: "); err == nil {
			msg, err = r.api.ResetPassword(ctx, args[1], args[2], pw)
		}
	case cmd == "chat" && len(args) > 1:
		msg, err = r.api.Chat(ctx, r.token(), strings.Join(args[1:], " "))
	default:
		fmt.Println(usage)
		return true
	}

	if err != nil {
		fmt.Println("error:", err)
	} else if msg != "" {
		fmt.Println(msg)
	}
	r.printState()
	return true
}
