package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
	Auth       AuthConfig       `yaml:"auth"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig は gRPC / HTTP サーバーの待ち受けアドレスです。
type ServerConfig struct {
	GRPCListenAddr string `yaml:"grpc_listen_addr"`
	HTTPListenAddr string `yaml:"http_listen_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// RedisConfig は通知キャッシュ用 Redis の設定です。Addr が空の場合キャッシュは無効です。
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"-"`
	TTLRaw   string        `yaml:"ttl"`
}

// StorageConfig は書類を保存する S3 互換ストレージの設定です。
type StorageConfig struct {
	Endpoint         string        `yaml:"endpoint"`
	AccessKey        string        `yaml:"access_key"`
	SecretKey        string        `yaml:"secret_key"`
	Bucket           string        `yaml:"bucket"`
	Region           string        `yaml:"region"`
	UseSSL           bool          `yaml:"use_ssl"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	PresignExpiry    time.Duration `yaml:"-"`
	PresignExpiryRaw string        `yaml:"presign_expiry"`
}

// AuthConfig は管理 API の JWT 設定です。
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	Issuer      string        `yaml:"issuer"`
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// ComplianceConfig は通知評価の設定です。
type ComplianceConfig struct {
	LookAheadDays int    `yaml:"look_ahead_days"`
	Timezone      string `yaml:"timezone"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	defaultRedisTTL      = 6 * time.Hour
	defaultPresignExpiry = 15 * time.Minute
	defaultTokenTTL      = 12 * time.Hour
	defaultLookAheadDays = 30
	defaultTimezone      = "America/Santiago"
	defaultIssuer        = "cloud-contador"
	minJWTSecretLength   = 32
)

// Load は指定されたパスから設定ファイルを読み込み、環境変数で秘匿値を上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv は秘匿値と接続先を環境変数から上書きします。
func (c *Config) applyEnv(getenv func(string) string) error {
	overrides := map[string]*string{
		"DB_HOST":            &c.Database.Host,
		"DB_USER":            &c.Database.User,
		"DB_PASSWORD":        &c.Database.Password,
		"DB_NAME":            &c.Database.Name,
		"REDIS_ADDR":         &c.Redis.Addr,
		"REDIS_PASSWORD":     &c.Redis.Password,
		"STORAGE_ENDPOINT":   &c.Storage.Endpoint,
		"STORAGE_ACCESS_KEY": &c.Storage.AccessKey,
		"STORAGE_SECRET_KEY": &c.Storage.SecretKey,
		"JWT_SECRET":         &c.Auth.JWTSecret,
		"LOG_LEVEL":          &c.Log.Level,
	}
	for key, dst := range overrides {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if v := getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid DB_PORT: %w", err)
		}
		c.Database.Port = port
	}
	return nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.GRPCListenAddr == "" {
		return fmt.Errorf("config: server.grpc_listen_addr must be set")
	}
	if c.Server.HTTPListenAddr == "" {
		return fmt.Errorf("config: server.http_listen_addr must be set")
	}

	steps := []func() error{
		c.Database.validateAndNormalize,
		c.Redis.validateAndNormalize,
		c.Storage.validateAndNormalize,
		c.Auth.validateAndNormalize,
		c.Compliance.validateAndNormalize,
		c.Log.validateAndNormalize,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (r *RedisConfig) validateAndNormalize() error {
	ttl, err := parseDurationAllowEmpty(r.TTLRaw)
	if err != nil {
		return fmt.Errorf("config: redis.ttl: %w", err)
	}
	if ttl == 0 {
		ttl = defaultRedisTTL
	}
	r.TTL = ttl
	if r.DB < 0 {
		return fmt.Errorf("config: redis.db must not be negative")
	}
	return nil
}

// Enabled は Redis キャッシュを使うかどうかを返します。
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

func (s *StorageConfig) validateAndNormalize() error {
	if s.Endpoint == "" {
		return fmt.Errorf("config: storage.endpoint must be set")
	}
	if s.Bucket == "" {
		return fmt.Errorf("config: storage.bucket must be set")
	}
	if s.AccessKey == "" || s.SecretKey == "" {
		return fmt.Errorf("config: storage.access_key and storage.secret_key must be set")
	}
	if s.MaxUploadBytes < 0 {
		return fmt.Errorf("config: storage.max_upload_bytes must not be negative")
	}

	expiry, err := parseDurationAllowEmpty(s.PresignExpiryRaw)
	if err != nil {
		return fmt.Errorf("config: storage.presign_expiry: %w", err)
	}
	if expiry == 0 {
		expiry = defaultPresignExpiry
	}
	if expiry > 7*24*time.Hour {
		return fmt.Errorf("config: storage.presign_expiry must not exceed 7 days")
	}
	s.PresignExpiry = expiry
	return nil
}

func (a *AuthConfig) validateAndNormalize() error {
	if len(a.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("config: auth.jwt_secret must be at least %d bytes", minJWTSecretLength)
	}
	if a.Issuer == "" {
		a.Issuer = defaultIssuer
	}

	ttl, err := parseDurationAllowEmpty(a.TokenTTLRaw)
	if err != nil {
		return fmt.Errorf("config: auth.token_ttl: %w", err)
	}
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	a.TokenTTL = ttl
	return nil
}

func (c *ComplianceConfig) validateAndNormalize() error {
	if c.LookAheadDays < 0 {
		return fmt.Errorf("config: compliance.look_ahead_days must not be negative")
	}
	if c.LookAheadDays == 0 {
		c.LookAheadDays = defaultLookAheadDays
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: compliance.timezone: %w", err)
	}
	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not supported", l.Level)
	}

	if l.Format == "" {
		l.Format = "json"
	}
	if l.Format != "json" && l.Format != "console" {
		return fmt.Errorf("config: log.format %q is not supported", l.Format)
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
