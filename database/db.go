package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the ledger database selected by DB_DRIVER ("mysql" or
// "sqlite") with pooling and retry. The handle is cached in DB.
func Connect() (*gorm.DB, error) {
	if DB != nil {
		return DB, nil
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driver := strings.ToLower(getenv("DB_DRIVER", "mysql")); driver {
	case "mysql":
		db, err = openMySQL()
	case "sqlite":
		db, err = OpenSQLite(getenv("DB_SQLITE_PATH", "deposit-stx.db"))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	if err != nil {
		return nil, err
	}

	DB = db
	return DB, nil
}

// OpenSQLite opens a SQLite database. SQLite allows a single writer, so the
// pool is limited to one connection.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	log.Info().Str("driver", "sqlite").Str("dsn", dsn).Msg("database opened")
	return db, nil
}

// IsMySQL reports whether db talks to MySQL.
func IsMySQL(db *gorm.DB) bool {
	return db.Dialector.Name() == "mysql"
}

func openMySQL() (*gorm.DB, error) {
	dsn, pass := mysqlDSN()

	// log the DSN (without password) to help troubleshoot connection issues
	safeDSN := dsn
	if pass != "" {
		safeDSN = strings.Replace(safeDSN, pass, "******", 1)
	}
	log.Info().Str("driver", "mysql").Str("dsn", safeDSN).Msg("connecting to database")

	// Optionally register a custom TLS config named "custom" for strict certificate validation
	if strings.Contains(dsn, "tls=custom") {
		if err := registerTLS(); err != nil {
			return nil, err
		}
	}

	// Retry connection with exponential backoff
	maxRetries := atoi(getenv("DB_CONNECT_RETRIES", "5"))
	if maxRetries == 0 {
		maxRetries = 1
	}
	var db *gorm.DB
	var err error
	backoff := time.Second
	for attempt := 0; attempt < maxRetries; attempt++ {
		db, err = gorm.Open(gormmysql.Open(dsn), &gorm.Config{Logger: gormLogger()})
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("database connect failed")
		time.Sleep(backoff)
		backoff *= 2
	}
	if err != nil {
		return nil, err
	}

	// Configure connection pool on the underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	maxOpen := atoi(getenv("DB_MAX_OPEN_CONNS", "25"))
	maxIdle := atoi(getenv("DB_MAX_IDLE_CONNS", "25"))
	maxLifetimeSec := atoi(getenv("DB_CONN_MAX_LIFETIME", "3600"))

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(maxLifetimeSec) * time.Second)

	if getenv("DB_PING_ON_CONNECT", "true") == "true" {
		if err := pingWithTimeout(sqlDB, 5*time.Second); err != nil {
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
	}
	return db, nil
}

// mysqlDSN builds the DSN from DB_* variables and returns it with the
// password in use so callers can mask it.
func mysqlDSN() (string, string) {
	host := getenv("DB_HOST", "127.0.0.1")
	port := getenv("DB_PORT", "3306")
	user := getenv("DB_USER", "root")
	pass := getenv("DB_PASS", "")
	name := getenv("DB_NAME", "deposit_stx")
	params := getenv("DB_PARAMS", "charset=utf8mb4&parseTime=True&loc=Local")

	// Allow role override: "read" will try DB_READ_USER/DB_READ_PASS, "write" uses DB_USER
	if strings.ToLower(getenv("DB_ROLE", "write")) == "read" {
		if ruser := getenv("DB_READ_USER", ""); ruser != "" {
			user = ruser
			pass = getenv("DB_READ_PASS", "")
		}
	}

	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn, pass
	}

	if !strings.Contains(params, "tls=") {
		// DB_TLS: skip, preferred, true. DB_TLS_VERIFY=true switches to the custom config.
		tlsMode := getenv("DB_TLS", "true")
		if tlsMode == "true" || tlsMode == "preferred" {
			if getenv("DB_TLS_VERIFY", "false") == "true" {
				params = params + "&tls=custom"
			} else {
				params = params + "&tls=true"
			}
		}
	}
	for _, p := range []string{"timeout", "readTimeout", "writeTimeout"} {
		if !strings.Contains(params, p+"=") {
			params = params + "&" + p + "=10s"
		}
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, name, params), pass
}

func registerTLS() error {
	tlsCfg := &tls.Config{}
	if caPath := getenv("DB_TLS_CA_PATH", ""); caPath != "" {
		caCert, err := os.ReadFile(caPath)
		if err != nil {
			return fmt.Errorf("failed reading DB TLS CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return errors.New("failed to append CA certs")
		}
		tlsCfg.RootCAs = pool
	}
	clientCert := getenv("DB_TLS_CLIENT_CERT", "")
	clientKey := getenv("DB_TLS_CLIENT_KEY", "")
	if clientCert != "" && clientKey != "" {
		cert, err := tls.LoadX509KeyPair(clientCert, clientKey)
		if err != nil {
			return fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return mysqldriver.RegisterTLSConfig("custom", tlsCfg)
}

// GORM logger: verbose in development
func gormLogger() logger.Interface {
	if strings.ToLower(getenv("ENV", "development")) == "development" {
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Default.LogMode(logger.Silent)
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	if v <= 0 {
		return 0
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func pingWithTimeout(db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("ping timeout after %s", timeout)
		}
		return err
	}
	return nil
}
