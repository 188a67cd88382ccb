// Package symmetric implements the unified symmetric session model.
//
// Hashes, MACs, AEAD ciphers and HKDF are all driven through one Session
// type: open a session for an algorithm name (optionally with a Key and
// Options), absorb any number of inputs, then perform exactly one finalize
// operation. Which finalize operations are valid is decided by the
// algorithm's descriptor, not by the session type.
//
// Usage:
//
//	m := symmetric.NewManager(symmetric.Config{})
//	defer m.Close()
//
//	s, _ := m.Open("SHA-256", nil, nil)
//	defer s.Close()
//	s.Absorb([]byte("test"))
//	digest, _ := s.Squeeze(32)
package symmetric

import (
	"github.com/backkem/symcrypto/pkg/algorithm"
	"github.com/backkem/symcrypto/pkg/handle"
	"github.com/backkem/symcrypto/pkg/provider"
	"github.com/pion/logging"
)

// Config configures a Manager.
type Config struct {
	// Provider performs the primitives.
	// Default: provider.NewNative with the same LoggerFactory, owned and
	// closed by the Manager.
	Provider provider.Provider

	// LoggerFactory creates the "symmetric" logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}

// Manager creates keys and sessions on a provider.
// All methods are safe for concurrent use.
type Manager struct {
	p            provider.Provider
	ownsProvider bool
	log          logging.LeveledLogger
}

// NewManager creates a new Manager.
func NewManager(config Config) *Manager {
	m := &Manager{
		p:   config.Provider,
		log: newLogger(config.LoggerFactory, "symmetric"),
	}
	if m.p == nil {
		m.p = provider.NewNative(provider.Config{LoggerFactory: config.LoggerFactory})
		m.ownsProvider = true
	}
	return m
}

func newLogger(factory logging.LoggerFactory, scope string) logging.LeveledLogger {
	if factory == nil {
		f := logging.NewDefaultLoggerFactory()
		f.DefaultLogLevel = logging.LogLevelDisabled
		factory = f
	}
	return factory.NewLogger(scope)
}

// Provider returns the provider the Manager drives.
func (m *Manager) Provider() provider.Provider {
	return m.p
}

// Describe returns the descriptor of a supported algorithm.
func (m *Manager) Describe(alg string) (algorithm.Descriptor, error) {
	d, err := m.p.Describe(alg)
	if err != nil {
		return algorithm.Descriptor{}, wrap("describe", err)
	}
	return d, nil
}

// GenerateKey creates a random key for alg.
// Returns ErrAlgorithmMismatch if alg takes no key.
func (m *Manager) GenerateKey(alg string, opts *Options) (*Key, error) {
	const op = "key_generate"

	desc, err := m.Describe(alg)
	if err != nil {
		return nil, err
	}
	if !desc.SupportsKeys() {
		return nil, newError(op, ErrAlgorithmMismatch, algorithm.ErrKeyNotSupported)
	}

	h, err := m.p.KeyGenerate(alg, opts.toProvider())
	if err != nil {
		m.log.Debugf("%s %s: %v", op, alg, err)
		return nil, wrap(op, err)
	}
	return newKey(m, h, alg), nil
}

// ImportKey creates a key for alg from a copy of raw.
// Returns ErrInvalidKeyLength if raw is outside the algorithm's bounds and
// ErrAlgorithmMismatch if alg takes no key.
func (m *Manager) ImportKey(alg string, raw []byte) (*Key, error) {
	const op = "key_import"

	desc, err := m.Describe(alg)
	if err != nil {
		return nil, err
	}
	if err := desc.CheckKeyLen(len(raw)); err != nil {
		return nil, wrap(op, err)
	}

	h, err := m.p.KeyImport(alg, raw)
	if err != nil {
		return nil, wrap(op, err)
	}
	return newKey(m, h, alg), nil
}

// Open creates a session for alg.
//
// Errors, in the order they are checked:
//   - ErrUnsupportedAlgorithm for an unknown name
//   - ErrAlgorithmMismatch for a key on a keyless algorithm, a missing
//     key on a keyed one, or a key created for an incompatible algorithm
//   - ErrInvalidState for a closed key or one created on another provider
//   - ErrMissingNonce and ErrInvalidInputLength for the nonce
//   - ErrUnsupportedOption for a nonce on an algorithm without one
func (m *Manager) Open(alg string, key *Key, opts *Options) (*Session, error) {
	const op = "open"

	desc, err := m.Describe(alg)
	if err != nil {
		return nil, err
	}

	var kh *handle.Handle
	switch {
	case key != nil:
		if !desc.SupportsKeys() {
			return nil, newError(op, ErrAlgorithmMismatch, algorithm.ErrKeyNotSupported)
		}
		if !desc.KeyCompatible(key.alg) {
			return nil, newError(op, ErrAlgorithmMismatch, provider.ErrKeyMismatch)
		}
		if key.closed.Load() {
			return nil, newError(op, ErrInvalidState, provider.ErrInvalidHandle)
		}
		// Key handles only resolve in the provider that issued them.
		if key.m.p != m.p {
			return nil, newError(op, ErrInvalidState, errForeignKey)
		}
		h := key.h
		kh = &h
	case desc.RequiresKey():
		return nil, newError(op, ErrAlgorithmMismatch, provider.ErrKeyRequired)
	}

	if desc.RequiresNonce {
		if err := desc.CheckNonce(opts.Nonce()); err != nil {
			return nil, wrap(op, err)
		}
	} else if opts.has(OptionNonce) {
		return nil, newError(op, ErrUnsupportedOption, algorithm.ErrNonceNotSupported)
	}

	sh, err := m.p.SessionOpen(alg, kh, opts.toProvider())
	if err != nil {
		m.log.Debugf("%s %s: %v", op, alg, err)
		return nil, wrap(op, err)
	}

	m.log.Tracef("session %s opened for %s", sh, alg)
	return &Session{m: m, h: sh, desc: desc, state: StateOpen}, nil
}

// Close closes the provider if the Manager created it.
func (m *Manager) Close() error {
	if !m.ownsProvider {
		return nil
	}
	return m.p.Close()
}
