package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/filipal/fitspace-backend-radno/internal/config"
)

var (
	// ErrQueryTimeout marks a statement that hit its execution deadline.
	ErrQueryTimeout = errors.New("database query timeout")
	// ErrQueryFailed marks any other driver-level statement failure.
	ErrQueryFailed = errors.New("database query failed")
)

// DefaultQueryTimeout bounds a single statement when the configuration does
// not override it.
const DefaultQueryTimeout = 10 * time.Second

// QueryContext derives the per-statement deadline repositories run under.
func QueryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultQueryTimeout)
}

// TranslateError collapses driver errors into the two categories callers care
// about. sql.ErrNoRows is passed through untouched so not-found handling stays
// with the repository.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
}

// Connect makes a single connection attempt. Resolution order: DATABASE_URL,
// the direct DB_* variables, then credentials fetched from the secret store
// with the endpoint chosen by priority (cluster endpoint, secret host, proxy
// endpoint).
func Connect(ctx context.Context, cfg config.Database, secrets SecretFetcher) (*sql.DB, error) {
	dsn, endpointContext, err := resolveDSN(ctx, cfg, secrets)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database via %s: %w", endpointContext, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection failed while using %s: %w", endpointContext, err)
	}

	logrus.WithField("endpoint", endpointContext).Info("Database connection established")
	return db, nil
}

// ConnectWithRetry retries Connect up to cfg.ConnectRetries extra attempts
// with no backoff; the last error is surfaced when every attempt fails.
func ConnectWithRetry(ctx context.Context, cfg config.Database, secrets SecretFetcher) (*sql.DB, error) {
	attempts := cfg.ConnectRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		logrus.WithFields(logrus.Fields{
			"attempt": attempt,
			"of":      attempts,
		}).Info("Database connection attempt")

		db, err := Connect(ctx, cfg, secrets)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logrus.WithError(err).Warn("Database connection attempt failed")
	}

	return nil, lastErr
}

func resolveDSN(ctx context.Context, cfg config.Database, secrets SecretFetcher) (dsn, endpointContext string, err error) {
	if cfg.URL != "" {
		return cfg.URL, "DATABASE_URL environment variable", nil
	}

	if cfg.HasDirectEnv() {
		endpointContext = fmt.Sprintf("DB_HOST environment variable (%s)", cfg.Host)
		return buildDSN(cfg.Host, cfg.Port, cfg.Name, cfg.Username, cfg.Password, cfg.ConnectTimeout), endpointContext, nil
	}

	if cfg.SecretARN == "" {
		return "", "", errors.New("missing database configuration: need DATABASE_URL, [DB_HOST, DB_NAME, DB_USERNAME, DB_PASSWORD] or DB_SECRET_ARN plus DB_CLUSTER_ENDPOINT/DB_PROXY_ENDPOINT")
	}
	if secrets == nil {
		return "", "", errors.New("secret store fallback requested but no secret fetcher configured")
	}

	secret, err := secrets.Fetch(ctx, cfg.SecretARN)
	if err != nil {
		return "", "", fmt.Errorf("fetching database credentials from secret store: %w", err)
	}

	endpoint, endpointContext, err := chooseEndpoint(cfg, secret)
	if err != nil {
		return "", "", err
	}

	name := secret.DBName
	if name == "" {
		name = secret.Engine
	}
	if name == "" {
		name = "fitspace"
	}
	port := secret.Port
	if port == 0 {
		port = 5432
	}

	return buildDSN(endpoint, port, name, secret.Username, secret.Password, cfg.ConnectTimeout), endpointContext, nil
}

// chooseEndpoint applies the fixed priority order among configuration sources.
func chooseEndpoint(cfg config.Database, secret Secret) (endpoint, endpointContext string, err error) {
	switch {
	case cfg.ClusterEndpoint != "":
		return cfg.ClusterEndpoint, fmt.Sprintf("DB_CLUSTER_ENDPOINT environment variable (%s)", cfg.ClusterEndpoint), nil
	case secret.Host != "":
		return secret.Host, fmt.Sprintf("secret host value (%s)", secret.Host), nil
	case cfg.ProxyEndpoint != "":
		return cfg.ProxyEndpoint, fmt.Sprintf("DB_PROXY_ENDPOINT environment variable (%s)", cfg.ProxyEndpoint), nil
	default:
		return "", "", errors.New("no database endpoint available: set DB_CLUSTER_ENDPOINT or DB_PROXY_ENDPOINT, or store a host in the secret")
	}
}

func buildDSN(host string, port int, name, username, password string, connectTimeout time.Duration) string {
	seconds := int(connectTimeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=%d",
		url.QueryEscape(username),
		url.QueryEscape(password),
		host,
		port,
		url.PathEscape(name),
		seconds,
	)
}
