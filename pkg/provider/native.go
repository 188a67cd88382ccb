package provider

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/backkem/symcrypto/pkg/algorithm"
	"github.com/backkem/symcrypto/pkg/crypto"
	"github.com/backkem/symcrypto/pkg/handle"
	"github.com/hashicorp/go-multierror"
	"github.com/pion/logging"
)

// Config configures a Native provider.
type Config struct {
	// MaxHandles limits the number of live handles in each of the key,
	// session and tag tables.
	// Default: handle.DefaultMaxHandles (1024)
	MaxHandles int

	// Rand is the source for generated keys.
	// Default: crypto/rand.Reader
	Rand io.Reader

	// LoggerFactory creates the "provider" logger. Nil disables logging.
	LoggerFactory logging.LoggerFactory
}

type key struct {
	alg string
	raw []byte
}

type session struct {
	mu        sync.Mutex
	desc      algorithm.Descriptor
	st        state
	opts      Options
	finalized bool
}

type tag struct {
	raw []byte
}

// Native is the in-process Provider backed by pkg/crypto.
type Native struct {
	keys     *handle.Table[*key]
	sessions *handle.Table[*session]
	tags     *handle.Table[*tag]

	rand   io.Reader
	log    logging.LeveledLogger
	closed atomic.Bool
}

var _ Provider = (*Native)(nil)

// NewNative creates a Native provider.
func NewNative(config Config) *Native {
	if config.Rand == nil {
		config.Rand = rand.Reader
	}

	return &Native{
		keys:     handle.NewTable[*key](config.MaxHandles),
		sessions: handle.NewTable[*session](config.MaxHandles),
		tags:     handle.NewTable[*tag](config.MaxHandles),
		rand:     config.Rand,
		log:      newLogger(config.LoggerFactory, "provider"),
	}
}

func newLogger(factory logging.LoggerFactory, scope string) logging.LeveledLogger {
	if factory == nil {
		f := logging.NewDefaultLoggerFactory()
		f.DefaultLogLevel = logging.LogLevelDisabled
		factory = f
	}
	return factory.NewLogger(scope)
}

// Describe returns the descriptor for alg.
func (p *Native) Describe(alg string) (algorithm.Descriptor, error) {
	if _, ok := primitives[alg]; !ok {
		return algorithm.Descriptor{}, algorithm.ErrUnsupportedAlgorithm
	}
	return algorithm.Lookup(alg)
}

// KeyGenerate creates a random key of the algorithm's generated size.
// No key options are recognized.
func (p *Native) KeyGenerate(alg string, opts Options) (handle.Handle, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	desc, err := p.Describe(alg)
	if err != nil {
		return 0, err
	}
	if !desc.SupportsKeys() {
		return 0, algorithm.ErrKeyNotSupported
	}
	if len(opts) > 0 {
		return 0, ErrUnsupportedOption
	}

	raw := make([]byte, desc.KeyLen)
	if _, err := io.ReadFull(p.rand, raw); err != nil {
		p.log.Warnf("key generation for %s failed: %v", alg, err)
		return 0, fmt.Errorf("%w: %v", ErrRandom, err)
	}

	h, err := p.keys.Register(&key{alg: alg, raw: raw})
	if err != nil {
		clear(raw)
		return 0, err
	}
	p.log.Tracef("generated %s key %s", alg, h)
	return h, nil
}

// KeyImport stores a copy of raw as a key for alg.
func (p *Native) KeyImport(alg string, raw []byte) (handle.Handle, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	desc, err := p.Describe(alg)
	if err != nil {
		return 0, err
	}
	if err := desc.CheckKeyLen(len(raw)); err != nil {
		return 0, err
	}

	h, err := p.keys.Register(&key{alg: alg, raw: append([]byte{}, raw...)})
	if err != nil {
		return 0, err
	}
	p.log.Tracef("imported %s key %s", alg, h)
	return h, nil
}

// KeyExport returns a fresh copy of the key bytes.
func (p *Native) KeyExport(h handle.Handle) ([]byte, error) {
	k, err := p.keys.Get(h)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, k.raw...), nil
}

// SessionOpen creates a state for alg.
//
// Validation order: algorithm, option names, nonce, key. A nonce given to
// an algorithm that takes none is ErrUnsupportedOption.
func (p *Native) SessionOpen(alg string, keyHandle *handle.Handle, opts Options) (handle.Handle, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	desc, err := p.Describe(alg)
	if err != nil {
		return 0, err
	}

	for name := range opts {
		if name != OptionNonce {
			return 0, ErrUnsupportedOption
		}
	}
	nonce, hasNonce := opts[OptionNonce]
	if hasNonce && !desc.RequiresNonce {
		return 0, ErrUnsupportedOption
	}
	if err := desc.CheckNonce(nonce); err != nil {
		return 0, err
	}

	var raw []byte
	switch {
	case keyHandle != nil:
		if !desc.SupportsKeys() {
			return 0, algorithm.ErrKeyNotSupported
		}
		k, err := p.keys.Get(*keyHandle)
		if err != nil {
			return 0, err
		}
		if !desc.KeyCompatible(k.alg) {
			return 0, ErrKeyMismatch
		}
		raw = k.raw
	case desc.RequiresKey():
		return 0, ErrKeyRequired
	}

	if p.sessions.IsFull() {
		p.log.Warnf("session table full (%d handles), %s not opened", p.sessions.MaxHandles(), alg)
		return 0, ErrTooManyHandles
	}

	st, err := primitives[alg](raw, nonce)
	if err != nil {
		return 0, err
	}

	h, err := p.sessions.Register(&session{desc: desc, st: st, opts: copyOptions(opts)})
	if err != nil {
		wipe(st)
		return 0, err
	}
	p.log.Tracef("opened %s session %s", alg, h)
	return h, nil
}

func copyOptions(opts Options) Options {
	if len(opts) == 0 {
		return nil
	}
	out := make(Options, len(opts))
	for name, v := range opts {
		out[name] = append([]byte{}, v...)
	}
	return out
}

// SessionOption returns a copy of an option the session was opened with.
func (p *Native) SessionOption(h handle.Handle, name string) ([]byte, error) {
	s, err := p.sessions.Get(h)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.opts[name]
	if !ok {
		return nil, ErrUnsupportedOption
	}
	return append([]byte{}, v...), nil
}

// Absorb feeds data into a session that has not been finalized.
func (p *Native) Absorb(h handle.Handle, data []byte) error {
	s, err := p.sessions.Get(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return ErrFinalized
	}
	s.st.absorb(data)
	return nil
}

// finalize runs fn as the single finalize operation of a session.
// check runs first and leaves the session usable when it fails.
func (p *Native) finalize(h handle.Handle, op algorithm.Op, check func(algorithm.Descriptor) error, fn func(state) error) error {
	s, err := p.sessions.Get(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.desc.Supports(op) {
		return ErrInvalidOperation
	}
	if s.finalized {
		return ErrFinalized
	}
	if check != nil {
		if err := check(s.desc); err != nil {
			return err
		}
	}

	s.finalized = true
	return fn(s.st)
}

// Squeeze returns n bytes of output.
func (p *Native) Squeeze(h handle.Handle, n int) ([]byte, error) {
	var out []byte
	err := p.finalize(h, algorithm.OpSqueeze,
		func(d algorithm.Descriptor) error { return d.CheckOutputLen(n) },
		func(st state) error {
			sq, ok := st.(squeezer)
			if !ok {
				return ErrInvalidOperation
			}
			var err error
			out, err = sq.squeeze(n)
			return err
		})
	return out, err
}

// SqueezeTag computes the session's authentication tag and registers it.
func (p *Native) SqueezeTag(h handle.Handle) (handle.Handle, error) {
	var raw []byte
	err := p.finalize(h, algorithm.OpSqueezeTag, nil, func(st state) error {
		ts, ok := st.(tagSqueezer)
		if !ok {
			return ErrInvalidOperation
		}
		raw = ts.squeezeTag()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return p.tags.Register(&tag{raw: raw})
}

// SqueezeKey derives a key for newAlg from the session.
func (p *Native) SqueezeKey(h handle.Handle, newAlg string) (handle.Handle, error) {
	newDesc, err := p.Describe(newAlg)
	if err != nil {
		return 0, err
	}

	var raw []byte
	err = p.finalize(h, algorithm.OpSqueezeKey,
		func(algorithm.Descriptor) error {
			if !newDesc.SupportsKeys() {
				return algorithm.ErrKeyNotSupported
			}
			return nil
		},
		func(st state) error {
			ks, ok := st.(keySqueezer)
			if !ok {
				return ErrInvalidOperation
			}
			raw = ks.squeezeKey()
			return newDesc.CheckKeyLen(len(raw))
		})
	if err != nil {
		clear(raw)
		return 0, err
	}

	kh, err := p.keys.Register(&key{alg: newAlg, raw: raw})
	if err != nil {
		clear(raw)
		return 0, err
	}
	p.log.Tracef("derived %s key %s from session %s", newAlg, kh, h)
	return kh, nil
}

func checkCiphertext(n int) func(algorithm.Descriptor) error {
	return func(d algorithm.Descriptor) error {
		if n < d.MaxTagLen {
			return ErrInvalidTagLength
		}
		return nil
	}
}

func checkPlaintext(n int) func(algorithm.Descriptor) error {
	return func(d algorithm.Descriptor) error {
		return d.CheckPlaintextLen(n)
	}
}

func checkTag(n int) func(algorithm.Descriptor) error {
	return func(d algorithm.Descriptor) error {
		if n != d.MaxTagLen {
			return ErrInvalidTagLength
		}
		return nil
	}
}

func withCipher(fn func(aeadCipher) error) func(state) error {
	return func(st state) error {
		c, ok := st.(aeadCipher)
		if !ok {
			return ErrInvalidOperation
		}
		return fn(c)
	}
}

// Encrypt returns ciphertext || tag.
func (p *Native) Encrypt(h handle.Handle, plaintext []byte) ([]byte, error) {
	var out []byte
	err := p.finalize(h, algorithm.OpEncrypt, checkPlaintext(len(plaintext)), withCipher(func(c aeadCipher) error {
		out = c.encrypt(plaintext)
		return nil
	}))
	return out, err
}

// Decrypt verifies and decrypts ciphertext || tag.
func (p *Native) Decrypt(h handle.Handle, ciphertext []byte) ([]byte, error) {
	var out []byte
	err := p.finalize(h, algorithm.OpDecrypt, checkCiphertext(len(ciphertext)), withCipher(func(c aeadCipher) error {
		var err error
		out, err = c.decrypt(ciphertext)
		return err
	}))
	if err == ErrAuthenticationFailed {
		p.log.Debugf("session %s: authentication failed", h)
	}
	return out, err
}

// EncryptDetached returns the ciphertext and tag separately.
func (p *Native) EncryptDetached(h handle.Handle, plaintext []byte) (ciphertext, tagBytes []byte, err error) {
	err = p.finalize(h, algorithm.OpEncryptDetached, checkPlaintext(len(plaintext)), withCipher(func(c aeadCipher) error {
		ciphertext, tagBytes = c.encryptDetached(plaintext)
		return nil
	}))
	return ciphertext, tagBytes, err
}

// DecryptDetached verifies tag and decrypts ciphertext.
func (p *Native) DecryptDetached(h handle.Handle, ciphertext, tagBytes []byte) ([]byte, error) {
	var out []byte
	err := p.finalize(h, algorithm.OpDecryptDetached, checkTag(len(tagBytes)), withCipher(func(c aeadCipher) error {
		var err error
		out, err = c.decryptDetached(ciphertext, tagBytes)
		return err
	}))
	if err == ErrAuthenticationFailed {
		p.log.Debugf("session %s: authentication failed", h)
	}
	return out, err
}

// TagVerify compares raw with the tag in constant time.
func (p *Native) TagVerify(h handle.Handle, raw []byte) (bool, error) {
	t, err := p.tags.Get(h)
	if err != nil {
		return false, err
	}
	return crypto.HMACEqual(t.raw, raw), nil
}

// TagExport returns a fresh copy of the tag bytes.
func (p *Native) TagExport(h handle.Handle) ([]byte, error) {
	t, err := p.tags.Get(h)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, t.raw...), nil
}

// CloseKey releases a key and zeroes its bytes. Sessions already opened
// with the key are unaffected.
func (p *Native) CloseKey(h handle.Handle) error {
	k, err := p.keys.Close(h)
	if err != nil {
		return err
	}
	clear(k.raw)
	p.log.Tracef("closed key %s", h)
	return nil
}

// CloseSession releases a session state.
func (p *Native) CloseSession(h handle.Handle) error {
	s, err := p.sessions.Close(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	wipe(s.st)
	s.mu.Unlock()
	p.log.Tracef("closed session %s", h)
	return nil
}

// CloseTag releases a tag.
func (p *Native) CloseTag(h handle.Handle) error {
	t, err := p.tags.Close(h)
	if err != nil {
		return err
	}
	clear(t.raw)
	return nil
}

// Outstanding returns the number of live keys, sessions and tags.
func (p *Native) Outstanding() (keys, sessions, tags int) {
	return p.keys.Count(), p.sessions.Count(), p.tags.Count()
}

// Close releases every outstanding handle. New keys and sessions are
// refused afterwards. Failures are aggregated.
func (p *Native) Close() error {
	p.closed.Store(true)

	p.sessions.ForEach(func(h handle.Handle, s *session) bool {
		p.log.Debugf("closing %s session %s left open", s.desc.Name, h)
		return true
	})

	var result *multierror.Error
	for _, h := range p.sessions.Handles() {
		if err := p.CloseSession(h); err != nil {
			result = multierror.Append(result, fmt.Errorf("session %s: %w", h, err))
		}
	}
	for _, h := range p.tags.Handles() {
		if err := p.CloseTag(h); err != nil {
			result = multierror.Append(result, fmt.Errorf("tag %s: %w", h, err))
		}
	}
	for _, h := range p.keys.Handles() {
		if err := p.CloseKey(h); err != nil {
			result = multierror.Append(result, fmt.Errorf("key %s: %w", h, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		p.log.Warnf("close: %v", err)
		return err
	}
	return nil
}
