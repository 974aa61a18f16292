package router

import (
	"github.com/oksasatya/go-otp-auth/config"
	"github.com/oksasatya/go-otp-auth/internal/application"
	"github.com/oksasatya/go-otp-auth/internal/container"
	"github.com/oksasatya/go-otp-auth/internal/domain/otp"
	"github.com/oksasatya/go-otp-auth/internal/infrastructure/cooldown"
	mongoinfra "github.com/oksasatya/go-otp-auth/internal/infrastructure/mongo"
	handlers "github.com/oksasatya/go-otp-auth/internal/interface/http"
	"github.com/oksasatya/go-otp-auth/internal/router/modules"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
)

type AuthModuleDeps struct {
	Auth        *application.AuthService
	OTP         *application.OTPService
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
}

func buildAuthDeps(cfg *config.Config) AuthModuleDeps {
	repo := mongoinfra.NewUserRepository(container.GetMongo())
	logger := container.GetLogger()
	jwt := container.GetJWT()

	authSvc := application.NewAuthService(repo, jwt, container.GetMail(), container.GetAudit(), logger, cfg)
	otpSvc := application.NewOTPService(repo, otp.NewMachine(), container.GetMail(), container.GetAudit(), logger, cfg)

	return AuthModuleDeps{
		Auth:        authSvc,
		OTP:         otpSvc,
		AuthHandler: handlers.NewAuthHandler(authSvc, otpSvc, jwt, helpers.NewCookie("", cfg.IsProduction()), logger),
		UserHandler: handlers.NewUserHandler(authSvc, logger),
	}
}

func buildChatHandler(cfg *config.Config) *handlers.ChatHandler {
	provider := container.GetChat()
	if provider == nil {
		return nil
	}
	var cd application.Cooldown = cooldown.NewMemory()
	if rdb := container.GetRedis(); rdb != nil {
		cd = cooldown.NewRedis(rdb)
	}
	svc := application.NewChatService(provider, cd, cfg.ChatCooldown, cfg.ChatTimeout, container.GetLogger())
	return handlers.NewChatHandler(svc, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	jwt := container.GetJWT()
	rdb := container.GetRedis()

	deps := buildAuthDeps(cfg)
	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(deps.AuthHandler, jwt, rdb))
	r.Add(modules.NewUserModule(deps.UserHandler, jwt, rdb))
	if h := buildChatHandler(cfg); h != nil {
		r.Add(modules.NewChatModule(h, jwt))
	}
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
