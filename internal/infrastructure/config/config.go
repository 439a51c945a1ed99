package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	defaultTokenTTL  = 12 * time.Hour
	defaultClientURL = "http://localhost:3001"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	NodeEnv  string `env:"NODE_ENV,  default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Storage   StorageConfig
	Redis     RedisConfig
	ClientURL string `env:"CLIENT_URL"`
}

type AuthConfig struct {
	JWTSecret    string `env:"JWT_SECRET"`
	JWTExpiresIn string `env:"JWT_EXPIRES_IN, default=12h"`
	AdminAPIKey  string `env:"ADMIN_API_KEY"`
}

type StorageConfig struct {
	DataDir         string `env:"DATA_DIR,                default=data"`
	PerUser         bool   `env:"INSTALLATIONS_PER_USER,  default=true"`
	SharedFile      string `env:"INSTALLATIONS_DATA_FILE"`
	InstallationDir string `env:"INSTALLATIONS_DATA_DIR, default=data/installations"`
	UsersFile       string `env:"USERS_DATA_FILE"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := cfg.TokenTTL(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnvName is "production" only when NODE_ENV says so exactly.
func (c *Config) EnvName() string {
	if c.NodeEnv == EnvProduction {
		return EnvProduction
	}
	return EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.EnvName() == EnvProduction
}

// AllowedOrigin is the single CORS origin the API accepts.
func (c *Config) AllowedOrigin() string {
	if c.IsProduction() && c.ClientURL != "" {
		return c.ClientURL
	}
	return defaultClientURL
}

// SharedFile is the single-collection file, also the migration source for
// per-user partitions.
func (c *Config) SharedFile() string {
	if c.Storage.SharedFile != "" {
		return c.Storage.SharedFile
	}
	return filepath.Join(c.Storage.DataDir, "installations."+c.EnvName()+".json")
}

func (c *Config) UsersFile() string {
	if c.Storage.UsersFile != "" {
		return c.Storage.UsersFile
	}
	return filepath.Join(c.Storage.DataDir, "users."+c.EnvName()+".json")
}

// TokenTTL parses JWT_EXPIRES_IN. Accepts Go durations ("90m"), whole days
// ("7d") and bare seconds ("3600").
func (c *Config) TokenTTL() (time.Duration, error) {
	return ParseTTL(c.Auth.JWTExpiresIn)
}

func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultTokenTTL, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("config: JWT_EXPIRES_IN must be positive, got %q", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("config: invalid JWT_EXPIRES_IN %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: invalid JWT_EXPIRES_IN %q", s)
	}
	return d, nil
}

// StaticCredential is one AUTH_USER_<n>_USERNAME / _PASSWORD pair.
type StaticCredential struct {
	Index    int
	Username string
	Password string
}

var staticUserKey = regexp.MustCompile(`^AUTH_USER_(\d+)_(USERNAME|PASSWORD)$`)

// StaticUserCredentials collects complete AUTH_USER_<n> pairs from environ
// (KEY=value entries, as returned by os.Environ) ordered by n. Incomplete
// pairs are returned too; the auth layer decides what to do with them.
func StaticUserCredentials(environ []string) []StaticCredential {
	byIndex := map[int]*StaticCredential{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m := staticUserKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		cred, found := byIndex[idx]
		if !found {
			cred = &StaticCredential{Index: idx}
			byIndex[idx] = cred
		}
		if m[2] == "USERNAME" {
			cred.Username = strings.TrimSpace(value)
		} else {
			cred.Password = value
		}
	}

	out := make([]StaticCredential, 0, len(byIndex))
	for _, c := range byIndex {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}
