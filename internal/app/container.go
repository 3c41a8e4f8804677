package app

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/classauth/domain"
	"github.com/you/classauth/internal/config"
	"github.com/you/classauth/internal/identity"
	"github.com/you/classauth/internal/infrastructure/auth"
	"github.com/you/classauth/internal/infrastructure/database"
	"github.com/you/classauth/internal/infrastructure/notifications"
	"github.com/you/classauth/internal/infrastructure/ratelimit"
	"github.com/you/classauth/internal/infrastructure/repositories"
	"github.com/you/classauth/internal/services"
)

// Container holds all dependencies, wired through explicit constructor
// injection; no component looks anything up from ambient state.
type Container struct {
	Config *config.Config

	DB          *gorm.DB
	RedisClient *redis.Client

	UserRepo  domain.UserRepository
	CodeStore domain.AccessCodeStore

	Normalizer  *identity.Normalizer
	PasswordSvc domain.PasswordService
	TokenSvc    domain.TokenService
	Notifier    domain.Notifier
	RateLimiter domain.RateLimiter
	AuthSvc     domain.AuthService
	PolicySvc   domain.PolicyService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	container.initRedis()
	if err := container.initServices(); err != nil {
		return nil, err
	}

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB).Client
}

func (c *Container) initServices() error {
	userRepo := repositories.NewUserRepository(c.DB)
	c.UserRepo = userRepo
	c.CodeStore = repositories.NewAccessCodeRepository(c.DB)

	c.Normalizer = identity.NewNormalizer(c.Config.DefaultRegion)
	c.PasswordSvc = auth.NewBcryptHasher(0)
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTSecret,
		c.Config.JWTIssuer,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)
	c.RateLimiter = ratelimit.NewRedisLimiter(c.RedisClient)

	// SMS is the primary delivery channel; email is used when Twilio is not
	// configured.
	if c.Config.TwilioSID != "" || c.Config.ResendAPIKey == "" {
		c.Notifier = notifications.NewTwilioNotifier(c.Config.TwilioSID, c.Config.TwilioToken, c.Config.TwilioFrom)
	} else {
		c.Notifier = notifications.NewResendNotifier(c.Config.ResendAPIKey, c.Config.ResendFrom)
	}

	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.PolicySvc = services.NewPolicyService(cas.E)

	c.AuthSvc = services.NewAuthService(
		userRepo,
		userRepo,
		c.CodeStore,
		c.Notifier,
		c.TokenSvc,
		c.PasswordSvc,
		c.Normalizer,
		services.AuthConfig{
			OTPSecret:      c.Config.OTPSecret,
			OTPTTL:         c.Config.OTPTTL,
			OTPMaxAttempts: c.Config.OTPMaxAttempts,
			NotifyTimeout:  c.Config.NotifyTimeout,
		},
	)

	return nil
}

// Close closes all connections
func (c *Container) Close() error {
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
