package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Auth       `yaml:"auth"`
	Directory  `yaml:"directory"`
	Analytics  `yaml:"analytics"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Port           int      `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	BaseURL        string   `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"*"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"wagroups"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedData        bool   `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"true"`
}

// Auth holds admin authentication configuration.
type Auth struct {
	JWTSecret       string `yaml:"jwt_secret" env:"JWT_SECRET"`
	AccessTokenTTL  string `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	Issuer          string `yaml:"issuer" env:"JWT_ISSUER" env-default:"WAGroups-Backend"`
	// Seed admin account, created once when database.seed_data is enabled.
	AdminUsername string `yaml:"admin_username" env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

// Directory holds submission and listing rules.
type Directory struct {
	MinNameLength    int  `yaml:"min_name_length" env:"MIN_NAME_LENGTH" env-default:"3"`
	StrictLinkPrefix bool `yaml:"strict_link_prefix" env:"STRICT_LINK_PREFIX" env-default:"false"`
	TrendingLimit    int  `yaml:"trending_limit" env:"TRENDING_LIMIT" env-default:"20"`
}

// Analytics holds the click telemetry processor configuration.
type Analytics struct {
	Enabled     bool `yaml:"enabled" env:"ANALYTICS_ENABLED" env-default:"true"`
	WorkerCount int  `yaml:"worker_count" env:"ANALYTICS_WORKERS" env-default:"2"`
	BufferSize  int  `yaml:"buffer_size" env:"ANALYTICS_BUFFER" env-default:"1000"`
}

// MustLoad loads the application configuration. Missing store credentials or
// JWT secret abort startup here rather than surfacing as opaque 500s later.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	if cfg.Database.User == "" || cfg.Database.Password == "" {
		log.Fatal("config error: database credentials are required (DB_USER, DB_PASSWORD)")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("config error: JWT_SECRET is required")
	}
	if cfg.Database.SeedData && cfg.Auth.AdminPassword == "" {
		log.Fatal("config error: ADMIN_PASSWORD is required when seed_data is enabled")
	}

	return &cfg
}
