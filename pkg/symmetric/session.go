package symmetric

import (
	"errors"

	"github.com/backkem/symcrypto/pkg/algorithm"
	"github.com/backkem/symcrypto/pkg/handle"
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateOpen accepts Absorb and one finalize operation.
	StateOpen State = iota

	// StateFinalized rejects everything but Close.
	StateFinalized

	// StateClosed has released its provider state.
	StateClosed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "Open"
	case StateFinalized:
		return "Finalized"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// CiphertextAndTag is the output of EncryptDetached.
type CiphertextAndTag struct {
	Ciphertext []byte
	Tag        []byte
}

// Session is one use of one algorithm: Open, any number of Absorb calls,
// exactly one finalize operation, Close.
//
// Finalize operations check, in order: that the algorithm supports the
// operation (ErrAlgorithmMismatch), that the session is open
// (ErrInvalidState), and the caller's input (ErrInvalidInputLength). A
// failed check leaves the session open. Once the provider has been asked
// to finalize, the session is Finalized whatever the outcome.
//
// A Session is not safe for concurrent use.
type Session struct {
	m     *Manager
	h     handle.Handle
	desc  algorithm.Descriptor
	state State
}

// Algorithm returns the algorithm name.
func (s *Session) Algorithm() string {
	return s.desc.Name
}

// Descriptor returns a copy of the algorithm descriptor.
func (s *Session) Descriptor() algorithm.Descriptor {
	d := s.desc
	d.Compatible = append([]string(nil), s.desc.Compatible...)
	return d
}

// MaxTagLen returns the tag length of Auth and AEAD algorithms, 0 otherwise.
func (s *Session) MaxTagLen() int {
	return s.desc.MaxTagLen
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Option returns a copy of an option the session was opened with.
// Returns ErrUnsupportedOption if the option was not set.
func (s *Session) Option(name string) ([]byte, error) {
	if s.state == StateClosed {
		return nil, newError("options_get", ErrInvalidState, nil)
	}
	v, err := s.m.p.SessionOption(s.h, name)
	if err != nil {
		return nil, wrap("options_get", err)
	}
	return v, nil
}

// Absorb feeds data into the session.
func (s *Session) Absorb(data []byte) error {
	if s.state != StateOpen {
		return s.reject("absorb", ErrInvalidState)
	}
	if err := s.m.p.Absorb(s.h, data); err != nil {
		return wrap("absorb", err)
	}
	return nil
}

func (s *Session) reject(op string, kind error) error {
	s.m.log.Debugf("session %s: %s rejected in state %s: %v", s.h, op, s.state, kind)
	return newError(op, kind, nil)
}

// begin runs the capability and state gates of a finalize operation.
func (s *Session) begin(op string, capability algorithm.Op) error {
	if !s.desc.Supports(capability) {
		return s.reject(op, ErrAlgorithmMismatch)
	}
	if s.state != StateOpen {
		return s.reject(op, ErrInvalidState)
	}
	return nil
}

// finalized records that the provider was asked to finalize.
func (s *Session) finalized(op string) {
	s.state = StateFinalized
	s.m.log.Tracef("session %s finalized by %s", s.h, op)
}

// Squeeze returns n bytes of hash, XOF or HKDF-Expand output.
// Returns ErrInvalidInputLength if n exceeds the algorithm's maximum.
func (s *Session) Squeeze(n int) ([]byte, error) {
	const op = "squeeze"
	if err := s.begin(op, algorithm.OpSqueeze); err != nil {
		return nil, err
	}
	if err := s.desc.CheckOutputLen(n); err != nil {
		return nil, newError(op, ErrInvalidInputLength, err)
	}

	out, err := s.m.p.Squeeze(s.h, n)
	s.finalized(op)
	if err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

// SqueezeTag returns an authentication tag over the absorbed data. For AEAD
// algorithms the tag authenticates the absorbed data as associated data
// with an empty plaintext.
func (s *Session) SqueezeTag() (*Tag, error) {
	const op = "squeeze_tag"
	if err := s.begin(op, algorithm.OpSqueezeTag); err != nil {
		return nil, err
	}

	th, err := s.m.p.SqueezeTag(s.h)
	s.finalized(op)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &Tag{m: s.m, h: th, n: s.desc.MaxTagLen}, nil
}

// SqueezeKey derives a key for newAlg.
// Returns ErrAlgorithmMismatch if newAlg takes no key and
// ErrInvalidKeyLength if the derived key does not fit it.
func (s *Session) SqueezeKey(newAlg string) (*Key, error) {
	const op = "squeeze_key"
	if err := s.begin(op, algorithm.OpSqueezeKey); err != nil {
		return nil, err
	}
	newDesc, err := s.m.Describe(newAlg)
	if err != nil {
		return nil, err
	}
	if !newDesc.SupportsKeys() {
		return nil, newError(op, ErrAlgorithmMismatch, algorithm.ErrKeyNotSupported)
	}

	kh, err := s.m.p.SqueezeKey(s.h, newAlg)
	s.finalized(op)
	if err != nil {
		return nil, wrap(op, err)
	}
	return newKey(s.m, kh, newAlg), nil
}

// Encrypt returns ciphertext || tag, len(plaintext)+MaxTagLen bytes.
// Returns ErrInvalidInputLength if plaintext exceeds the cipher's
// per-message limit.
func (s *Session) Encrypt(plaintext []byte) ([]byte, error) {
	const op = "encrypt"
	if err := s.begin(op, algorithm.OpEncrypt); err != nil {
		return nil, err
	}
	if err := s.desc.CheckPlaintextLen(len(plaintext)); err != nil {
		return nil, newError(op, ErrInvalidInputLength, err)
	}

	out, err := s.m.p.Encrypt(s.h, plaintext)
	s.finalized(op)
	if err != nil {
		return nil, encryptionError(op, err)
	}
	return out, nil
}

// Decrypt verifies and decrypts ciphertext || tag.
// Returns ErrInvalidInputLength if ciphertext is shorter than the tag and
// ErrAuthenticationFailed if verification fails.
func (s *Session) Decrypt(ciphertext []byte) ([]byte, error) {
	const op = "decrypt"
	if err := s.begin(op, algorithm.OpDecrypt); err != nil {
		return nil, err
	}
	if len(ciphertext) < s.desc.MaxTagLen {
		return nil, newError(op, ErrInvalidInputLength, nil)
	}

	out, err := s.m.p.Decrypt(s.h, ciphertext)
	s.finalized(op)
	if err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

// EncryptDetached returns the ciphertext and the tag separately.
func (s *Session) EncryptDetached(plaintext []byte) (CiphertextAndTag, error) {
	const op = "encrypt_detached"
	if err := s.begin(op, algorithm.OpEncryptDetached); err != nil {
		return CiphertextAndTag{}, err
	}
	if err := s.desc.CheckPlaintextLen(len(plaintext)); err != nil {
		return CiphertextAndTag{}, newError(op, ErrInvalidInputLength, err)
	}

	ct, tag, err := s.m.p.EncryptDetached(s.h, plaintext)
	s.finalized(op)
	if err != nil {
		return CiphertextAndTag{}, encryptionError(op, err)
	}
	return CiphertextAndTag{Ciphertext: ct, Tag: tag}, nil
}

// DecryptDetached verifies tag and decrypts ciphertext.
// Returns ErrInvalidInputLength if tag is not MaxTagLen bytes.
func (s *Session) DecryptDetached(ciphertext, tag []byte) ([]byte, error) {
	const op = "decrypt_detached"
	if err := s.begin(op, algorithm.OpDecryptDetached); err != nil {
		return nil, err
	}
	if len(tag) != s.desc.MaxTagLen {
		return nil, newError(op, ErrInvalidInputLength, nil)
	}

	out, err := s.m.p.DecryptDetached(s.h, ciphertext, tag)
	s.finalized(op)
	if err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

// encryptionError reports provider failures during encryption as
// ErrEncryptionFailed.
func encryptionError(op string, err error) error {
	kind := kindOf(err)
	if errors.Is(kind, ErrProvider) {
		kind = ErrEncryptionFailed
	}
	return newError(op, kind, err)
}

// Close releases the session. Closing a closed session is a no-op.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if err := s.m.p.CloseSession(s.h); err != nil {
		return wrap("close", err)
	}
	s.m.log.Tracef("session %s closed", s.h)
	return nil
}
