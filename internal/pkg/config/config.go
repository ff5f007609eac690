package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string        `env:"PORT,         default=3000"`
	Env        string        `env:"ENV,          default=development"`
	LogLevel   string        `env:"LOG_LEVEL,    default=info"`
	AppBaseURL string        `env:"APP_BASE_URL, default=http://localhost:3000"`
	JWTSecret  string        `env:"JWT_SECRET,   required"`
	JWTTTL     time.Duration `env:"JWT_TTL,      default=1h"`

	Store  StoreConfig
	Mongo  MongoConfig
	Mail   MailConfig
	Avatar AvatarConfig
	S3     S3Config
	Upload UploadConfig
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=users_api"`
}

type MailConfig struct {
	Driver         string `env:"MAIL_DRIVER,      default=log"`
	From           string `env:"MAIL_FROM,        default=juniorseniors.dev@gmail.com"`
	FromName       string `env:"MAIL_FROM_NAME"`
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT,        default=587"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
}

type AvatarConfig struct {
	Store      string `env:"AVATAR_STORE,       default=local"`
	Dir        string `env:"AVATAR_DIR,         default=public/avatars"`
	PublicPath string `env:"AVATAR_PUBLIC_PATH, default=/avatars"`
}

type S3Config struct {
	Endpoint        string `env:"S3_ENDPOINT"`
	Region          string `env:"S3_REGION, default=us-east-1"`
	Bucket          string `env:"S3_BUCKET"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	Prefix          string `env:"S3_PREFIX, default=avatars"`
	PublicURL       string `env:"S3_PUBLIC_URL"`
}

type UploadConfig struct {
	TempDir       string        `env:"UPLOAD_TEMP_DIR,       default=temp"`
	MaxBytes      int64         `env:"UPLOAD_MAX_BYTES,      default=5242880"`
	SweepSchedule string        `env:"UPLOAD_SWEEP_SCHEDULE, default=*/30 * * * *"`
	SweepMaxAge   time.Duration `env:"UPLOAD_SWEEP_MAX_AGE,  default=1h"`
}

// IsDevelopment reports whether human-friendly console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.Mail.Driver {
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid mail driver"))
		}
	case "smtp":
		if c.Mail.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp mail driver"))
		}
	case "log":
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver))
	}

	switch c.Avatar.Store {
	case "local":
	case "s3":
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 avatar store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AVATAR_STORE %q", c.Avatar.Store))
	}

	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}

	return errors.Join(errs...)
}
