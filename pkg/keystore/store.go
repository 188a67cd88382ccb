// Package keystore keeps symmetric keys addressed by a random ID and a
// version number.
//
// Every ID names a key lineage for one algorithm. Rotate adds a new version
// to a lineage; older versions stay readable until they expire or the
// lineage is invalidated. Expired and invalidated keys are closed, so
// sessions must be opened while the key is live.
package keystore

import (
	"fmt"
	"sync"
	"time"

	"github.com/backkem/symcrypto/pkg/symmetric"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pion/logging"
	"github.com/pmylund/go-cache"
)

// Default values for Config.
const (
	// DefaultCleanupInterval is how often expired keys are closed.
	DefaultCleanupInterval = time.Minute
)

// Config configures a Store.
type Config struct {
	// Manager creates and imports the stored keys. Required.
	Manager *symmetric.Manager

	// TTL is how long each key version stays live.
	// Zero means keys never expire.
	TTL time.Duration

	// CleanupInterval is how often expired keys are closed.
	// Default: DefaultCleanupInterval. Ignored when TTL is zero.
	CleanupInterval time.Duration

	// LoggerFactory creates the "keystore" logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}

func (c *Config) applyDefaults() {
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
}

// Entry describes one stored key version.
type Entry struct {
	ID        uuid.UUID
	Version   uint32
	Algorithm string
	Created   time.Time
	Key       *symmetric.Key
}

// lineage tracks the versions issued for one ID.
type lineage struct {
	alg    string
	latest uint32
}

// Store is an expiring, versioned key store.
// All methods are safe for concurrent use.
type Store struct {
	m     *symmetric.Manager
	cache *cache.Cache
	log   logging.LeveledLogger

	mu       sync.Mutex
	lineages map[uuid.UUID]*lineage
	closed   bool
}

// New creates a Store.
func New(config Config) (*Store, error) {
	if config.Manager == nil {
		return nil, ErrNoManager
	}
	config.applyDefaults()

	ttl := cache.NoExpiration
	cleanup := time.Duration(0)
	if config.TTL > 0 {
		ttl = config.TTL
		cleanup = config.CleanupInterval
	}

	s := &Store{
		m:        config.Manager,
		cache:    cache.New(ttl, cleanup),
		log:      newLogger(config.LoggerFactory, "keystore"),
		lineages: make(map[uuid.UUID]*lineage),
	}
	s.cache.OnEvicted(s.evicted)
	return s, nil
}

func newLogger(factory logging.LoggerFactory, scope string) logging.LeveledLogger {
	if factory == nil {
		f := logging.NewDefaultLoggerFactory()
		f.DefaultLogLevel = logging.LogLevelDisabled
		factory = f
	}
	return factory.NewLogger(scope)
}

func cacheKey(id uuid.UUID, version uint32) string {
	return fmt.Sprintf("%s/%d", id, version)
}

// evicted closes keys that expired or were deleted.
func (s *Store) evicted(k string, v interface{}) {
	e := v.(*Entry)
	if err := e.Key.Close(); err != nil {
		s.log.Warnf("closing evicted key %s: %v", k, err)
		return
	}
	s.log.Debugf("key %s evicted", k)
}

// Generate creates a random key for alg as version 1 of a new lineage.
func (s *Store) Generate(alg string) (Entry, error) {
	key, err := s.m.GenerateKey(alg, nil)
	if err != nil {
		return Entry{}, err
	}
	return s.add(uuid.New(), 1, key)
}

// Put imports raw as version 1 of a new lineage.
func (s *Store) Put(alg string, raw []byte) (Entry, error) {
	key, err := s.m.ImportKey(alg, raw)
	if err != nil {
		return Entry{}, err
	}
	return s.add(uuid.New(), 1, key)
}

// Rotate generates the next version of the lineage id.
func (s *Store) Rotate(id uuid.UUID) (Entry, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Entry{}, ErrClosed
	}
	l, ok := s.lineages[id]
	if !ok {
		s.mu.Unlock()
		return Entry{}, ErrNotFound
	}
	alg := l.alg
	s.mu.Unlock()

	key, err := s.m.GenerateKey(alg, nil)
	if err != nil {
		return Entry{}, err
	}
	return s.add(id, 0, key)
}

// add stores key under id. A zero version means the next one in the lineage.
func (s *Store) add(id uuid.UUID, version uint32, key *symmetric.Key) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		key.Close()
		return Entry{}, ErrClosed
	}

	l, ok := s.lineages[id]
	switch {
	case !ok && version == 0:
		// Invalidated while the new version was generated.
		key.Close()
		return Entry{}, ErrNotFound
	case !ok:
		l = &lineage{alg: key.Algorithm()}
		s.lineages[id] = l
	}
	if version == 0 {
		version = l.latest + 1
	}
	l.latest = version

	e := &Entry{
		ID:        id,
		Version:   version,
		Algorithm: key.Algorithm(),
		Created:   time.Now(),
		Key:       key,
	}
	s.cache.SetDefault(cacheKey(id, version), e)
	s.log.Debugf("stored %s key %s version %d", e.Algorithm, id, version)
	return *e, nil
}

// Get returns a live key version.
func (s *Store) Get(id uuid.UUID, version uint32) (Entry, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return Entry{}, ErrClosed
	}

	v, ok := s.cache.Get(cacheKey(id, version))
	if !ok {
		return Entry{}, ErrNotFound
	}
	return *v.(*Entry), nil
}

// Latest returns the newest version of the lineage id, if it is still live.
func (s *Store) Latest(id uuid.UUID) (Entry, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Entry{}, ErrClosed
	}
	l, ok := s.lineages[id]
	if !ok {
		s.mu.Unlock()
		return Entry{}, ErrNotFound
	}
	version := l.latest
	s.mu.Unlock()

	return s.Get(id, version)
}

// Invalidate closes every version of the lineage id and forgets it.
func (s *Store) Invalidate(id uuid.UUID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	l, ok := s.lineages[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.lineages, id)
	latest := l.latest
	s.mu.Unlock()

	for v := uint32(1); v <= latest; v++ {
		s.cache.Delete(cacheKey(id, v))
	}
	s.log.Debugf("invalidated key %s (%d versions)", id, latest)
	return nil
}

// Len returns the number of live key versions.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Close closes every stored key. Failures are aggregated.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.lineages = nil
	s.mu.Unlock()

	s.cache.OnEvicted(nil)

	var result *multierror.Error
	for k, item := range s.cache.Items() {
		if err := item.Object.(*Entry).Key.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("key %s: %w", k, err))
		}
	}
	s.cache.Flush()

	return result.ErrorOrNil()
}
