package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSN returns a MySQL data source name.
// A configured connection string wins; otherwise the DSN is built from the discrete fields.
func (d *DatabaseConfig) DSN() string {
	if dsn := strings.TrimSpace(d.ConnectionString); dsn != "" {
		if !strings.Contains(dsn, "parseTime") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		return dsn
	}

	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	cfg.DBName = d.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

// EffectiveDatabaseName returns the schema the server reads from and where it came from.
func (d *DatabaseConfig) EffectiveDatabaseName() (name string, source string, err error) {
	dsn := strings.TrimSpace(d.ConnectionString)
	if dsn == "" {
		return strings.TrimSpace(d.Database), "database.database", nil
	}

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", "", fmt.Errorf("invalid database.dsn: %w", err)
	}
	if parsed.DBName == "" {
		return "", "", fmt.Errorf("database.dsn does not select a database")
	}
	return parsed.DBName, "database.dsn", nil
}
