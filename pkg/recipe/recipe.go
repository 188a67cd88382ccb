// Package recipe provides one-shot compositions of the symmetric session
// model: hash a message, authenticate it, derive keys with HKDF, and seal
// or open an AEAD message.
//
// Every recipe opens exactly one session, closes it before returning and
// returns the first error it encounters unchanged.
package recipe

import (
	"github.com/backkem/symcrypto/pkg/provider"
	"github.com/backkem/symcrypto/pkg/symmetric"
)

// keyAlgorithm returns the algorithm a recipe opens its session for.
// Recipes that take their algorithm from a key reject a nil key.
func keyAlgorithm(op string, key *symmetric.Key) (string, error) {
	if key == nil {
		return "", &symmetric.Error{Op: op, Kind: symmetric.ErrAlgorithmMismatch, Err: provider.ErrKeyRequired}
	}
	return key.Algorithm(), nil
}

// closeSession closes s and reports its error only if no earlier error
// occurred.
func closeSession(s *symmetric.Session, err *error) {
	if cerr := s.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// closeTag is closeSession for tags.
func closeTag(t *symmetric.Tag, err *error) {
	if cerr := t.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// Hash returns outLen bytes of the digest of msg under alg. key may be nil,
// and must be for algorithms that take no key.
func Hash(m *symmetric.Manager, alg string, msg []byte, outLen int, key *symmetric.Key) (out []byte, err error) {
	s, err := m.Open(alg, key, nil)
	if err != nil {
		return nil, err
	}
	defer closeSession(s, &err)

	if err = s.Absorb(msg); err != nil {
		return nil, err
	}
	return s.Squeeze(outLen)
}

// Auth returns the authentication tag of msg under key. The algorithm is
// the one key was created for.
func Auth(m *symmetric.Manager, msg []byte, key *symmetric.Key) (tag []byte, err error) {
	t, err := squeezeTag(m, msg, key)
	if err != nil {
		releaseTag(t)
		return nil, err
	}
	defer closeTag(t, &err)

	return t.Bytes()
}

// AuthVerify recomputes the tag of msg under key and compares it with
// expected in constant time. A mismatch is false with a nil error.
func AuthVerify(m *symmetric.Manager, msg []byte, key *symmetric.Key, expected []byte) (ok bool, err error) {
	t, err := squeezeTag(m, msg, key)
	if err != nil {
		releaseTag(t)
		return false, err
	}
	defer closeTag(t, &err)

	return t.Verify(expected), nil
}

// releaseTag closes a tag squeezed by a session whose Close then failed.
// The session error is the one reported.
func releaseTag(t *symmetric.Tag) {
	if t != nil {
		_ = t.Close()
	}
}

func squeezeTag(m *symmetric.Manager, msg []byte, key *symmetric.Key) (t *symmetric.Tag, err error) {
	alg, err := keyAlgorithm("auth", key)
	if err != nil {
		return nil, err
	}
	s, err := m.Open(alg, key, nil)
	if err != nil {
		return nil, err
	}
	defer closeSession(s, &err)

	if err = s.Absorb(msg); err != nil {
		return nil, err
	}
	t, err = s.SqueezeTag()
	if err != nil {
		return nil, err
	}
	return t, nil
}

// HKDFExtract derives a pseudorandom key for prkAlg from the input keying
// material key, e.g. an HKDF-EXTRACT/SHA-256 key and prkAlg
// HKDF-EXPAND/SHA-256. A nil salt is not absorbed.
func HKDFExtract(m *symmetric.Manager, prkAlg string, key *symmetric.Key, salt []byte) (prk *symmetric.Key, err error) {
	alg, err := keyAlgorithm("hkdf_extract", key)
	if err != nil {
		return nil, err
	}
	s, err := m.Open(alg, key, nil)
	if err != nil {
		return nil, err
	}
	defer closeSession(s, &err)

	if salt != nil {
		if err = s.Absorb(salt); err != nil {
			return nil, err
		}
	}
	return s.SqueezeKey(prkAlg)
}

// HKDFExpand returns outLen bytes of output keying material from prk and
// info.
func HKDFExpand(m *symmetric.Manager, prk *symmetric.Key, info []byte, outLen int) (out []byte, err error) {
	alg, err := keyAlgorithm("hkdf_expand", prk)
	if err != nil {
		return nil, err
	}
	s, err := m.Open(alg, prk, nil)
	if err != nil {
		return nil, err
	}
	defer closeSession(s, &err)

	if err = s.Absorb(info); err != nil {
		return nil, err
	}
	return s.Squeeze(outLen)
}
