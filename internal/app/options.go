package service

import (
	"time"

	"github.com/okian/rhythm/internal/adapters/cache"
	"github.com/okian/rhythm/internal/domain/syncscore"
	"github.com/okian/rhythm/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAnalyzer replaces the default engine.
func WithAnalyzer(a syncscore.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.engine = a
		}
	}
}

// WithStore sets the result store. Without it Start builds an in-memory one.
func WithStore(st cache.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithCacheTTL sets how long results stay in the default in-memory store.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCacheMaxEntries bounds the default in-memory store.
func WithCacheMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheMaxEntries = n
		}
	}
}

// WithBackendName labels the store in stats output.
func WithBackendName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.backend = name
		}
	}
}
