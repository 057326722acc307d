package jsonidx

import (
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/jsonidx/internal/db/redis"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	host     string
	port     int
	username string
	password string
	db       int

	poolMinIdle int
	poolMaxIdle int
	maxWait     time.Duration

	connectTimeout time.Duration
	requestTimeout time.Duration

	readinessTimeout time.Duration
	indexTimeout     time.Duration
	batchSize        int

	logger *zap.Logger
}

// WithRedis sets the server address.
func WithRedis(host string, port int) Option {
	return func(c *clientConfig) {
		c.host = host
		c.port = port
	}
}

// WithCredentials sets the ACL user and password.
func WithCredentials(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithDB selects a logical database.
func WithDB(n int) Option {
	return func(c *clientConfig) { c.db = n }
}

// WithPool bounds the exclusive connections used for bulk writes and how
// long a writer waits for one.
func WithPool(minIdle, maxIdle int, maxWait time.Duration) Option {
	return func(c *clientConfig) {
		c.poolMinIdle = minIdle
		c.poolMaxIdle = maxIdle
		c.maxWait = maxWait
	}
}

// WithTimeouts bounds dialing and each command round trip, pipelined
// batches included. Zero keeps the store defaults.
func WithTimeouts(connect, request time.Duration) Option {
	return func(c *clientConfig) {
		c.connectTimeout = connect
		c.requestTimeout = request
	}
}

// WithReadinessTimeout bounds the initial connection check.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.readinessTimeout = d }
}

// WithIndexTimeout bounds how long WaitReady polls for background indexing.
func WithIndexTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.indexTimeout = d }
}

// WithBatchSize sets the documents per pipelined write batch (1..200).
func WithBatchSize(n int) Option {
	return func(c *clientConfig) { c.batchSize = n }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

func (c *clientConfig) storeConfig() dbRedis.Config {
	return dbRedis.Config{
		Host:           c.host,
		Port:           c.port,
		Username:       c.username,
		Password:       c.password,
		DB:             c.db,
		PoolMinIdle:    c.poolMinIdle,
		PoolMaxIdle:    c.poolMaxIdle,
		MaxWait:        c.maxWait,
		ConnectTimeout: c.connectTimeout,
		RequestTimeout: c.requestTimeout,
	}
}
