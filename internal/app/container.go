package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/xbpneus/authgate/domain"
	"github.com/xbpneus/authgate/internal/config"
	httpx "github.com/xbpneus/authgate/internal/http"
	"github.com/xbpneus/authgate/internal/http/handlers"
	"github.com/xbpneus/authgate/internal/http/middleware"
	"github.com/xbpneus/authgate/internal/infrastructure/auth"
	"github.com/xbpneus/authgate/internal/infrastructure/database"
	"github.com/xbpneus/authgate/internal/infrastructure/lockout"
	"github.com/xbpneus/authgate/internal/infrastructure/messaging"
	"github.com/xbpneus/authgate/internal/infrastructure/metrics"
	"github.com/xbpneus/authgate/internal/infrastructure/notifications"
	"github.com/xbpneus/authgate/internal/infrastructure/repositories"
	"github.com/xbpneus/authgate/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Casbin      *auth.CasbinService
	Metrics     *metrics.RedisSink
	amqp        *messaging.AMQPPublisher

	// Repositories
	PrincipalRepo domain.PrincipalRepository
	ProfileRepo   domain.ProfileRepository
	SessionRepo   domain.SessionRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	LockoutSvc      domain.LockoutService
	Publisher       domain.EventPublisher
	AuditLogger     domain.AuditLogger
	AuthSvc         domain.AuthService
	RegistrationSvc domain.RegistrationService
	PolicySvc       domain.PolicyService
}

// NewContainer connects to Postgres, Redis and (when configured) RabbitMQ
// and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := database.Open(cfg.DSN, cfg.DBLogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewContainerWith(cfg, db, rdb.Client)
}

// NewContainerWith initializes all dependencies on already opened
// connections. Tables and default policies are created when missing.
func NewContainerWith(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Container, error) {
	c := &Container{Config: cfg, DB: db, RedisClient: rdb}

	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	if err := c.initCasbin(); err != nil {
		return nil, err
	}
	if err := c.initMessaging(); err != nil {
		return nil, err
	}
	c.initRepositories()
	if err := c.initServices(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initCasbin() error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return fmt.Errorf("failed to initialize casbin: %w", err)
	}

	roles := make([]string, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		roles = append(roles, string(r))
	}
	if err := cas.SeedPolicies(roles); err != nil {
		return fmt.Errorf("failed to seed casbin policies: %w", err)
	}

	c.Casbin = cas
	return nil
}

func (c *Container) initMessaging() error {
	if c.Config.RabbitURL == "" {
		log.Println("rabbitmq: no url configured, account events will only be logged")
		c.Publisher = messaging.NopPublisher{}
		return nil
	}

	pub, err := messaging.NewAMQPPublisher(c.Config.RabbitURL, c.Config.RabbitExchange)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	c.amqp = pub
	c.Publisher = pub
	return nil
}

func (c *Container) initRepositories() {
	c.PrincipalRepo = repositories.NewPrincipalRepository(c.DB)
	c.ProfileRepo = repositories.NewProfileRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient, c.Config.RefreshTTL)
}

func (c *Container) initServices() error {
	c.PasswordSvc = auth.NewPasswordService(c.Config.BcryptCost)
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTSecret,
		c.Config.JWTIssuer,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
	)
	c.Metrics = metrics.NewRedisSink(c.RedisClient, c.Config.MetricsPrefix)
	c.AuditLogger = services.NewLogAuditLogger(nil)

	if c.Config.LockoutEnabled {
		c.LockoutSvc = lockout.NewRedisLockout(c.RedisClient, c.Config.LockoutPrefix, c.Config.LockoutLimit, c.Config.LockoutCooloff)
	} else {
		c.LockoutSvc = lockout.NopLockout{}
	}

	backend, err := services.BuildBackendChain(c.Config.AuthBackends, c.PrincipalRepo, c.ProfileRepo, c.PasswordSvc)
	if err != nil {
		return err
	}

	c.AuthSvc = services.NewAuthService(
		c.PrincipalRepo,
		c.ProfileRepo,
		c.SessionRepo,
		backend,
		c.TokenSvc,
		c.LockoutSvc,
		c.Metrics,
		c.AuditLogger,
		services.AuthOptions{
			SessionTTL:      c.Config.RefreshTTL,
			UpdateLastLogin: c.Config.UpdateLastLogin,
		},
	)
	c.RegistrationSvc = services.NewRegistrationService(
		c.PrincipalRepo,
		c.ProfileRepo,
		c.PasswordSvc,
		c.Publisher,
		c.NotificationSvc,
		c.AuditLogger,
	)
	c.PolicySvc = services.NewPolicyService(c.Casbin.E)

	return nil
}

// Router builds the HTTP handler tree
func (c *Container) Router() *gin.Engine {
	return httpx.BuildRouter(httpx.Routes{
		Tokens:   handlers.NewTokenHandlers(c.AuthSvc),
		Accounts: handlers.NewAccountHandlers(c.AuthSvc, c.RegistrationSvc),
		Admin:    handlers.NewAdminHandlers(c.RegistrationSvc, c.Metrics),
		Policies: handlers.NewPolicyHandlers(c.PolicySvc),
		JWT:      middleware.NewAuthMW(c.TokenSvc, c.SessionRepo),
		Casbin:   middleware.NewCasbinMW(c.PolicySvc),
		Throttle: middleware.RateLimit(c.Config.RateLimit, c.RedisClient),
		Metrics:  middleware.RequestMetrics(c.Metrics),

		TrustedProxies: c.Config.TrustedProxies,
	})
}

// Close closes all connections
func (c *Container) Close() error {
	if c.amqp != nil {
		if err := c.amqp.Close(); err != nil {
			log.Printf("rabbitmq: close failed: %v", err)
		}
	}

	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
