package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/jsonidx/internal/db"
	"github.com/kailas-cloud/jsonidx/internal/domain"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Default pool settings, matching a small commons-pool style configuration.
const (
	DefaultConnectTimeout = 2 * time.Second
	DefaultMaxWait        = 5 * time.Second
	DefaultPoolMaxIdle    = 8
)

// Config holds connection parameters for a Redis store.
// Credentials are explicit fields; they are never parsed out of a URI.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int

	ConnectTimeout time.Duration
	RequestTimeout time.Duration // 0 = no per-request deadline beyond the caller's ctx

	PoolMinIdle     int
	PoolMaxIdle     int           // upper bound of exclusive (write session) connections
	PoolIdleCleanup time.Duration // idle connections above PoolMinIdle are closed after this
	MaxWait         time.Duration // max wait for an exclusive connection
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MaxWait <= 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.PoolMaxIdle <= 0 {
		c.PoolMaxIdle = DefaultPoolMaxIdle
	}
	if c.PoolMinIdle > c.PoolMaxIdle {
		c.PoolMinIdle = c.PoolMaxIdle
	}
	return c
}

// Store implements db.Store via rueidis.
// The Store itself is the pooled handle: it is safe for concurrent use and
// every read path goes through it. Pipelined writes use WriteSession.
type Store struct {
	client         rueidis.Client
	requestTimeout time.Duration
	maxWait        time.Duration
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	cfg = cfg.withDefaults()

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:         []string{cfg.Addr()},
		Username:            cfg.Username,
		Password:            cfg.Password,
		SelectDB:            cfg.DB,
		Dialer:              net.Dialer{Timeout: cfg.ConnectTimeout},
		ConnWriteTimeout:    cfg.RequestTimeout,
		BlockingPoolSize:    cfg.PoolMaxIdle,
		BlockingPoolMinSize: cfg.PoolMinIdle,
		BlockingPoolCleanup: cfg.PoolIdleCleanup,
		ForceSingleClient:   true,
		DisableCache:        true,
		AlwaysRESP2:         true, // FT.SEARCH/FT.AGGREGATE parsing expects RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{
		client:         client,
		requestTimeout: cfg.RequestTimeout,
		maxWait:        cfg.MaxWait,
	}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.b().Ping().Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// WriteSession takes an exclusive connection from the blocking pool.
// It waits at most the configured MaxWait and reports pool exhaustion as
// *domain.ConnectionUnavailableError; callers decide whether to retry.
func (s *Store) WriteSession(ctx context.Context) (db.WriteSession, error) {
	ch := make(chan dedicated, 1)
	go func() {
		c, release := s.client.Dedicate()
		ch <- dedicated{client: c, release: release}
	}()

	timer := time.NewTimer(s.maxWait)
	defer timer.Stop()

	select {
	case d := <-ch:
		return &Session{client: d.client, release: d.release, timeout: s.requestTimeout}, nil
	case <-timer.C:
		go releaseLate(ch)
		return nil, &domain.ConnectionUnavailableError{Wait: s.maxWait, Err: db.ErrPoolExhausted}
	case <-ctx.Done():
		go releaseLate(ch)
		return nil, &domain.ConnectionUnavailableError{Wait: s.maxWait, Err: ctx.Err()}
	}
}

type dedicated struct {
	client  rueidis.DedicatedClient
	release func()
}

// releaseLate hands back a connection acquired after the caller gave up.
func releaseLate(ch <-chan dedicated) {
	d := <-ch
	d.release()
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}

// isNotFound reports a missing index or alias, which FT.* commands signal in several wordings.
func isNotFound(err error) bool {
	return isRedisErr(err, "unknown index name") ||
		isRedisErr(err, "no such index") ||
		isRedisErr(err, "not found")
}
