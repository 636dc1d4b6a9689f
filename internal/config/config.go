// Package config loads the query manager's settings, the same
// Default.../Load... shape as the teacher's internal/config.LoginServer:
// a YAML file layered over hardcoded defaults, never erroring on a
// missing file (spec.md §6's "startup config-file parsing" is an
// external collaborator; only the keys it must expose are specified).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend selects the DB engine behind internal/dbops.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
)

// Config holds every key spec.md §6/§7 names plus backend selection.
type Config struct {
	Backend Backend `yaml:"backend"`

	// Network
	QueryManagerPort     int    `yaml:"query_manager_port"`
	QueryManagerPassword string `yaml:"query_manager_password"`

	// Work queue / worker pool (spec.md §4.3/§4.4)
	MaxConnections        int `yaml:"max_connections"`
	MaxConnectionIdleTime int `yaml:"max_connection_idle_time_seconds"`
	QueryWorkerThreads    int `yaml:"query_worker_threads"`
	QueryBufferSize       int `yaml:"query_buffer_size"`
	QueryMaxAttempts      int `yaml:"query_max_attempts"`

	// Statement cache (spec.md §4.5)
	MaxCachedStatements int `yaml:"max_cached_statements"`

	// Hostname cache (spec.md §6; consumed only by the external DNS
	// collaborator this server doesn't implement, kept as pass-through
	// configuration).
	MaxCachedHostNames int `yaml:"max_cached_host_names"`
	HostNameExpireTime int `yaml:"hostname_expire_time_seconds"`

	// Metrics (additive, not a spec.md key)
	MetricsPort int `yaml:"metrics_port"`

	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	MySQL    MySQLConfig    `yaml:"mysql"`
}

// SQLiteConfig configures the embedded file-based backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig configures the networked Postgres backend.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the pgx connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// MySQLConfig configures the networked MySQL backend.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// DSN returns the go-sql-driver/mysql connection string.
func (m MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", m.User, m.Password, m.Host, m.Port, m.DBName)
}

// Default returns the config with sensible defaults, matching spec.md
// §6/§7's listed keys.
func Default() Config {
	return Config{
		Backend:               BackendSQLite,
		QueryManagerPort:      7171,
		QueryManagerPassword:  "",
		MaxConnections:        50,
		MaxConnectionIdleTime: 300,
		QueryWorkerThreads:    4,
		QueryBufferSize:       65536,
		QueryMaxAttempts:      3,
		MaxCachedStatements:   256,
		MaxCachedHostNames:    1000,
		HostNameExpireTime:    3600,
		MetricsPort:           9101,
		SQLite: SQLiteConfig{
			Path: "querymanager.db",
		},
		Postgres: PostgresConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "querymanager",
			DBName:  "querymanager",
			SSLMode: "disable",
		},
		MySQL: MySQLConfig{
			Host:   "127.0.0.1",
			Port:   3306,
			User:   "querymanager",
			DBName: "querymanager",
		},
	}
}

// Load reads path and overlays it onto Default(). A missing file is not
// an error: the process runs on defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
