package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every configuration variable the service reads.
const EnvPrefix = "VITALSTACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "VITALSTACK_DB_DSN"
	EnvDBHost = "VITALSTACK_DB_HOST"
	EnvDBUser = "VITALSTACK_DB_USER"
	EnvDBName = "VITALSTACK_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Uploads       UploadConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VITALSTACK_APP_ENV" required:"true"`
	Port         string `envconfig:"VITALSTACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VITALSTACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VITALSTACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VITALSTACK_DB_DSN"`
	Driver string `envconfig:"VITALSTACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VITALSTACK_DB_HOST"`
	Port     int    `envconfig:"VITALSTACK_DB_PORT" default:"5432"`
	User     string `envconfig:"VITALSTACK_DB_USER"`
	Password string `envconfig:"VITALSTACK_DB_PASSWORD"`
	Name     string `envconfig:"VITALSTACK_DB_NAME"`
	SSLMode  string `envconfig:"VITALSTACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VITALSTACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VITALSTACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VITALSTACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VITALSTACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VITALSTACK_REDIS_URL" required:"true"`
	Password     string        `envconfig:"VITALSTACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"VITALSTACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VITALSTACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VITALSTACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VITALSTACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VITALSTACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VITALSTACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VITALSTACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VITALSTACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VITALSTACK_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"VITALSTACK_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VITALSTACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VITALSTACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VITALSTACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VITALSTACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VITALSTACK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"VITALSTACK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"VITALSTACK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"VITALSTACK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"VITALSTACK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"VITALSTACK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"VITALSTACK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VITALSTACK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VITALSTACK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"VITALSTACK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VITALSTACK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"VITALSTACK_GCS_BUCKET_NAME" required:"true"`
	ReceiptFolder     string        `envconfig:"VITALSTACK_GCS_RECEIPT_FOLDER" default:"receipts"`
	BannerFolder      string        `envconfig:"VITALSTACK_GCS_BANNER_FOLDER" default:"banners"`
	DownloadURLExpiry time.Duration `envconfig:"VITALSTACK_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

type UploadConfig struct {
	MaxUploadMB int `envconfig:"VITALSTACK_MAX_UPLOAD_MB" default:"10"`
}

type CronConfig struct {
	NotificationRetention time.Duration `envconfig:"VITALSTACK_CRON_NOTIFICATION_RETENTION" default:"720h"`
	TickInterval          time.Duration `envconfig:"VITALSTACK_CRON_TICK_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
