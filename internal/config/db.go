package config

import (
	"fmt"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver          string `mapstructure:"DB_DRIVER"`
	SQLitePath      string `mapstructure:"DB_SQLITE_PATH"`
	Host            string `mapstructure:"DB_HOST"`
	Port            int    `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	TimeZone        string `mapstructure:"DB_TIMEZONE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifeTime int    `mapstructure:"DB_CONN_MAX_LIFETIME_MIN"` // minutes
}

func setDBDefaults(set func(key string, value any)) {
	set("DB_DRIVER", DriverPostgres)
	set("DB_SQLITE_PATH", "clinic.db")
	set("DB_HOST", "localhost")
	set("DB_PORT", 5432)
	set("DB_USER", "clinic")
	set("DB_PASSWORD", "clinic")
	set("DB_NAME", "clinic_booking")
	set("DB_SSLMODE", "disable")
	set("DB_TIMEZONE", "UTC")
	set("DB_MAX_OPEN_CONNS", 10)
	set("DB_MAX_IDLE_CONNS", 5)
	set("DB_CONN_MAX_LIFETIME_MIN", 30)
}

// Validate does minimal sanity checks per driver.
func (c *DBConfig) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Host == "" || c.User == "" || c.Name == "" {
			return fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("invalid DB config: DB_SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("invalid DB config: unknown driver %q", c.Driver)
	}
	return nil
}

// PostgresDSN renders the key/value DSN understood by pgx.
func (c *DBConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}
