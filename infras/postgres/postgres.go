package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"lodge/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute
	postgresPingTimeout       = 5 * time.Second
)

var ErrNotConnected = errors.New("postgres connection is not open")

// Connection holds the read and write pools. Both are nil when the service runs on the
// in-memory store.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// New opens both pools. The returned cleanup closes them and is safe to call once.
func New(cfg *config.Config) (*Connection, func(), error) {
	if cfg.Admission.StoreDriver == config.StoreDriverMemory {
		log.Info().Msg("Store driver is memory, skipping postgres connection")

		return &Connection{}, func() {}, nil
	}

	write, err := Open("write", cfg.DB.Postgres.Write, cfg)
	if err != nil {
		return nil, nil, err
	}

	read, err := Open("read", cfg.DB.Postgres.Read, cfg)
	if err != nil {
		_ = write.Close()

		return nil, nil, err
	}

	conn := &Connection{Read: read, Write: write}

	return conn, conn.Close, nil
}

// Close releases both pools.
func (c *Connection) Close() {
	for name, db := range map[string]*sqlx.DB{"read": c.Read, "write": c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			log.Error().Err(err).Str("name", name).Msg("Failed to close database connection")
		}
	}
}

// BeginTx starts a transaction on the write pool.
func (c *Connection) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	if c.Write == nil {
		return nil, ErrNotConnected
	}

	tx, err := c.Write.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return tx, nil
}

// DatabaseName applies the configured prefix to a database name.
func DatabaseName(cfg *config.Config, baseName string) string {
	return cfg.DB.Postgres.Prefix + baseName
}

// DSN renders the connection URL for one endpoint.
func DSN(cfg *config.Config, ep config.PostgresEndpoint) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		ep.Username,
		ep.Password,
		net.JoinHostPort(ep.Host, ep.Port),
		DatabaseName(cfg, ep.Name),
		ep.SSLMode,
	)
}

// Open connects to one endpoint, retrying MaxRetry times with RetryWaitTime seconds between attempts.
func Open(name string, ep config.PostgresEndpoint, cfg *config.Config) (*sqlx.DB, error) {
	attempts := max(cfg.DB.Postgres.MaxRetry, 1)
	logger := log.With().
		Str("name", name).
		Str("host", ep.Host).
		Str("port", ep.Port).
		Str("dbName", DatabaseName(cfg, ep.Name)).
		Logger()

	var lastErr error

	for attempt := range attempts {
		db, err := connect(DSN(cfg, ep))
		if err == nil {
			logger.Info().Msg("Connected to database")

			return db, nil
		}

		lastErr = err
		logger.Error().Err(err).Int("attempt", attempt+1).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(cfg.DB.Postgres.RetryWaitTime) * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to %s database after %d attempts: %w", name, attempts, lastErr)
}

func connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxIdleConns(postgresMaxIdleConnection)
	db.SetMaxOpenConns(postgresMaxOpenConnection)
	db.SetConnMaxLifetime(postgresConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), postgresPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
