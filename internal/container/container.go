package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-otp-auth/config"
	"github.com/oksasatya/go-otp-auth/internal/application"
	"github.com/oksasatya/go-otp-auth/internal/domain/repository"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	"github.com/oksasatya/go-otp-auth/pkg/mailer"
)

// app-level container to share constructed components across packages
// Router auto-wires modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoDB     *mongo.Database
	redisClient *redis.Client

	jwtManager *helpers.JWTManager

	mailDispatcher mailer.Dispatcher
	auditRepo      repository.AuditRepository
	chatProvider   application.ChatProvider
)

func SetConfig(c *config.Config)           { cfg = c }
func GetConfig() *config.Config            { return cfg }
func SetLogger(l *logrus.Logger)           { logger = l }
func GetLogger() *logrus.Logger            { return logger }
func SetMongo(db *mongo.Database)          { mongoDB = db }
func GetMongo() *mongo.Database            { return mongoDB }
func SetRedis(r *redis.Client)             { redisClient = r }
func GetRedis() *redis.Client              { return redisClient }
func SetJWT(m *helpers.JWTManager)         { jwtManager = m }
func SetMail(d mailer.Dispatcher)          { mailDispatcher = d }
func GetMail() mailer.Dispatcher           { return mailDispatcher }
func GetAudit() repository.AuditRepository { return auditRepo }
func GetChat() application.ChatProvider    { return chatProvider }

func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

// SetAudit stores the audit repository. Passing nil keeps auditing off.
func SetAudit(r repository.AuditRepository) { auditRepo = r }

// SetChat stores the chat provider. Passing nil disables /api/chat.
func SetChat(p application.ChatProvider) { chatProvider = p }
