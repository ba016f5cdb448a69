package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// State describes what the readiness probe knows about the configured database.
type State string

const (
	// StateUnconfigured means no database URL was given.
	StateUnconfigured State = "unconfigured"
	// StateUnsupported means the URL names a driver this service cannot reach
	// (the sqlite default of local development, for example).
	StateUnsupported State = "unsupported"
	StateUp          State = "up"
	StateDown        State = "down"
)

// Pinger is the slice of pgxpool.Pool the probe uses. It allows a mock pool
// to stand in during tests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Classify reports whether a database URL can be probed. When it cannot,
// the returned state explains why.
func Classify(databaseURL string) (State, bool) {
	if strings.TrimSpace(databaseURL) == "" {
		return StateUnconfigured, false
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return StateUnsupported, false
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return "", true
	default:
		return StateUnsupported, false
	}
}

// Open creates a connection pool for a PostgreSQL URL. The pool connects
// lazily, so a database that is down does not block startup.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if state, ok := Classify(databaseURL); !ok {
		return nil, fmt.Errorf("database URL cannot be probed: %s", state)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	return pool, nil
}

// Probe answers readiness questions about the database. A Probe with no
// pool reports a fixed state.
type Probe struct {
	pool    Pinger
	fixed   State
	timeout time.Duration
	log     *zap.Logger
}

// NewProbe creates a probe that pings pool with the given timeout.
func NewProbe(pool Pinger, timeout time.Duration, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{pool: pool, timeout: timeout, log: logger.Named("store")}
}

// NewStaticProbe creates a probe that always reports state.
func NewStaticProbe(state State) *Probe {
	return &Probe{fixed: state, log: zap.NewNop()}
}

// Status pings the database and reports StateUp or StateDown.
func (p *Probe) Status(ctx context.Context) State {
	if p.pool == nil {
		return p.fixed
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.pool.Ping(ctx); err != nil {
		p.log.Warn("Database ping failed", zap.Error(err))
		return StateDown
	}
	return StateUp
}

// ProbeFor builds the probe matching a configured URL. For PostgreSQL URLs
// it opens a pool and the returned cleanup closes it; for anything else it
// returns a static probe and a no-op cleanup.
func ProbeFor(ctx context.Context, databaseURL string, timeout time.Duration, logger *zap.Logger) (*Probe, func(), error) {
	state, ok := Classify(databaseURL)
	if !ok {
		return NewStaticProbe(state), func() {}, nil
	}
	pool, err := Open(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return NewProbe(pool, timeout, logger), pool.Close, nil
}
