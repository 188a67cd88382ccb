package symmetric

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/backkem/symcrypto/pkg/algorithm"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(Config{})
	t.Cleanup(func() {
		if err := m.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return m
}

func mustOpen(t *testing.T, m *Manager, alg string, key *Key, opts *Options) *Session {
	t.Helper()
	s, err := m.Open(alg, key, opts)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", alg, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSession_SHA256(t *testing.T) {
	m := newTestManager(t)
	s := mustOpen(t, m, algorithm.SHA256, nil, nil)

	if err := s.Absorb([]byte("test")); err != nil {
		t.Fatalf("Absorb() error = %v", err)
	}
	out, err := s.Squeeze(32)
	if err != nil {
		t.Fatalf("Squeeze() error = %v", err)
	}

	want, _ := hex.DecodeString("9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08")
	if !bytes.Equal(out, want) {
		t.Errorf("Squeeze() = %x, want %x", out, want)
	}
	if s.State() != StateFinalized {
		t.Errorf("State() = %v, want Finalized", s.State())
	}

	if _, err := s.Squeeze(32); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Squeeze() error = %v, want ErrInvalidState", err)
	}
	if err := s.Absorb([]byte("x")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Absorb() after finalize error = %v, want ErrInvalidState", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %v, want Closed", s.State())
	}
	if err := s.Absorb(nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Absorb() after close error = %v, want ErrInvalidState", err)
	}
}

func TestSession_SqueezePrefixAndDeterminism(t *testing.T) {
	m := newTestManager(t)

	digest := func(n int) []byte {
		s := mustOpen(t, m, algorithm.SHA512, nil, nil)
		s.Absorb([]byte("determinism"))
		out, err := s.Squeeze(n)
		if err != nil {
			t.Fatalf("Squeeze(%d) error = %v", n, err)
		}
		return out
	}

	full := digest(64)
	if again := digest(64); !bytes.Equal(full, again) {
		t.Error("same input produced different digests")
	}
	if short := digest(20); !bytes.Equal(short, full[:20]) {
		t.Errorf("Squeeze(20) = %x, want prefix %x", short, full[:20])
	}
}

func TestSession_AbsorbIsConcatenation(t *testing.T) {
	m := newTestManager(t)

	one := mustOpen(t, m, algorithm.SHA3_256, nil, nil)
	one.Absorb([]byte("hello world"))
	a, _ := one.Squeeze(32)

	two := mustOpen(t, m, algorithm.SHA3_256, nil, nil)
	two.Absorb([]byte("hello"))
	two.Absorb([]byte(" "))
	two.Absorb([]byte("world"))
	b, _ := two.Squeeze(32)

	if !bytes.Equal(a, b) {
		t.Error("split absorbs differ from a single absorb")
	}
}

func TestSession_ValidationLeavesOpen(t *testing.T) {
	m := newTestManager(t)

	s := mustOpen(t, m, algorithm.SHA256, nil, nil)
	if _, err := s.Squeeze(33); !errors.Is(err, ErrInvalidInputLength) {
		t.Fatalf("Squeeze(33) error = %v, want ErrInvalidInputLength", err)
	}
	if s.State() != StateOpen {
		t.Fatalf("State() = %v, want Open", s.State())
	}
	if _, err := s.Squeeze(32); err != nil {
		t.Errorf("Squeeze(32) error = %v", err)
	}
}

func TestSession_PlaintextLimit(t *testing.T) {
	m := newTestManager(t)
	key, err := m.ImportKey(algorithm.AES128CCM, make([]byte, 16))
	if err != nil {
		t.Fatalf("ImportKey() error = %v", err)
	}
	nonce := make([]byte, 13)
	limit := 1<<16 - 1

	tests := []struct {
		name    string
		encrypt func(*Session, []byte) error
	}{
		{"attached", func(s *Session, pt []byte) error { _, err := s.Encrypt(pt); return err }},
		{"detached", func(s *Session, pt []byte) error { _, err := s.EncryptDetached(pt); return err }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustOpen(t, m, algorithm.AES128CCM, key, WithNonce(nonce))

			if err := tc.encrypt(s, make([]byte, limit+1)); !errors.Is(err, ErrInvalidInputLength) {
				t.Fatalf("encrypt(%d bytes) error = %v, want ErrInvalidInputLength", limit+1, err)
			}
			if s.State() != StateOpen {
				t.Fatalf("State() = %v, want Open", s.State())
			}
			if err := tc.encrypt(s, make([]byte, limit)); err != nil {
				t.Errorf("encrypt(%d bytes) error = %v", limit, err)
			}
		})
	}
}

func TestSession_CapabilityBeforeState(t *testing.T) {
	m := newTestManager(t)

	s := mustOpen(t, m, algorithm.SHA256, nil, nil)

	tests := []struct {
		name string
		call func() error
	}{
		{"encrypt", func() error { _, err := s.Encrypt([]byte("x")); return err }},
		{"decrypt", func() error { _, err := s.Decrypt(make([]byte, 32)); return err }},
		{"encrypt_detached", func() error { _, err := s.EncryptDetached(nil); return err }},
		{"decrypt_detached", func() error { _, err := s.DecryptDetached(nil, nil); return err }},
		{"squeeze_tag", func() error { _, err := s.SqueezeTag(); return err }},
		{"squeeze_key", func() error { _, err := s.SqueezeKey(algorithm.HMACSHA256); return err }},
	}

	for _, tc := range tests {
		t.Run(tc.name+"/open", func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, ErrAlgorithmMismatch) {
				t.Errorf("error = %v, want ErrAlgorithmMismatch", err)
			}
		})
	}
	if s.State() != StateOpen {
		t.Fatalf("capability rejections changed state to %v", s.State())
	}

	s.Squeeze(32)
	for _, tc := range tests {
		t.Run(tc.name+"/finalized", func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, ErrAlgorithmMismatch) {
				t.Errorf("error = %v, want ErrAlgorithmMismatch", err)
			}
		})
	}
}

func TestSession_HMAC(t *testing.T) {
	m := newTestManager(t)

	key, err := m.ImportKey(algorithm.HMACSHA256, []byte("Jefe"))
	if err != nil {
		t.Fatalf("ImportKey() error = %v", err)
	}
	defer key.Close()

	s := mustOpen(t, m, algorithm.HMACSHA256, key, nil)
	s.Absorb([]byte("what do ya want for nothing?"))

	tag, err := s.SqueezeTag()
	if err != nil {
		t.Fatalf("SqueezeTag() error = %v", err)
	}

	want, _ := hex.DecodeString("5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843")
	if tag.Len() != 32 {
		t.Errorf("Len() = %d, want 32", tag.Len())
	}
	if !tag.Verify(want) {
		t.Error("Verify() = false for the correct tag")
	}

	wrong := append([]byte(nil), want...)
	wrong[31] ^= 1
	if tag.Verify(wrong) {
		t.Error("Verify() = true for a modified tag")
	}
	if tag.Verify(want[:16]) {
		t.Error("Verify() = true for a truncated tag")
	}

	raw, err := tag.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.Equal(raw, want) {
		t.Errorf("Bytes() = %x, want %x", raw, want)
	}
	raw[0] ^= 0xff
	if !tag.Verify(want) {
		t.Error("modifying Bytes() output changed the tag")
	}

	if err := tag.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if tag.Verify(want) {
		t.Error("Verify() = true after Close")
	}
	if _, err := tag.Bytes(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Bytes() after Close error = %v, want ErrInvalidState", err)
	}
}

func TestSession_AEADRoundTrip(t *testing.T) {
	m := newTestManager(t)

	for _, alg := range algorithm.ByCategory(algorithm.CategoryAEAD) {
		t.Run(alg, func(t *testing.T) {
			desc, _ := m.Describe(alg)
			key, err := m.GenerateKey(alg, nil)
			if err != nil {
				t.Fatalf("GenerateKey() error = %v", err)
			}
			defer key.Close()
			nonce := bytes.Repeat([]byte{0x24}, desc.NonceLen)
			plaintext := []byte("the quick brown fox")

			enc := mustOpen(t, m, alg, key, WithNonce(nonce))
			enc.Absorb([]byte("ad"))
			ct, err := enc.Encrypt(plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(ct) != len(plaintext)+enc.MaxTagLen() {
				t.Errorf("len(ciphertext) = %d, want %d", len(ct), len(plaintext)+enc.MaxTagLen())
			}

			dec := mustOpen(t, m, alg, key, WithNonce(nonce))
			dec.Absorb([]byte("ad"))
			pt, err := dec.Decrypt(ct)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(pt, plaintext) {
				t.Errorf("Decrypt() = %q, want %q", pt, plaintext)
			}

			tampered := append([]byte(nil), ct...)
			tampered[0] ^= 1
			bad := mustOpen(t, m, alg, key, WithNonce(nonce))
			bad.Absorb([]byte("ad"))
			if _, err := bad.Decrypt(tampered); !errors.Is(err, ErrAuthenticationFailed) {
				t.Errorf("Decrypt(tampered) error = %v, want ErrAuthenticationFailed", err)
			}
			if bad.State() != StateFinalized {
				t.Errorf("State() after failed decrypt = %v, want Finalized", bad.State())
			}
		})
	}
}

func TestSession_AEADDetached(t *testing.T) {
	m := newTestManager(t)

	key, _ := m.GenerateKey(algorithm.AES128GCM, nil)
	nonce := make([]byte, 12)

	enc := mustOpen(t, m, algorithm.AES128GCM, key, WithNonce(nonce))
	out, err := enc.EncryptDetached([]byte("detached"))
	if err != nil {
		t.Fatalf("EncryptDetached() error = %v", err)
	}
	if len(out.Ciphertext) != len("detached") || len(out.Tag) != 16 {
		t.Fatalf("EncryptDetached() lengths = %d, %d", len(out.Ciphertext), len(out.Tag))
	}

	dec := mustOpen(t, m, algorithm.AES128GCM, key, WithNonce(nonce))
	if _, err := dec.DecryptDetached(out.Ciphertext, out.Tag[:15]); !errors.Is(err, ErrInvalidInputLength) {
		t.Fatalf("DecryptDetached() short tag error = %v, want ErrInvalidInputLength", err)
	}
	if dec.State() != StateOpen {
		t.Fatalf("State() = %v, want Open", dec.State())
	}
	pt, err := dec.DecryptDetached(out.Ciphertext, out.Tag)
	if err != nil {
		t.Fatalf("DecryptDetached() error = %v", err)
	}
	if string(pt) != "detached" {
		t.Errorf("DecryptDetached() = %q", pt)
	}

	flipped := append([]byte(nil), out.Tag...)
	flipped[3] ^= 0x80
	bad := mustOpen(t, m, algorithm.AES128GCM, key, WithNonce(nonce))
	if _, err := bad.DecryptDetached(out.Ciphertext, flipped); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("DecryptDetached() error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestSession_AES256GCMModifiedAD(t *testing.T) {
	m := newTestManager(t)

	key, _ := m.GenerateKey(algorithm.AES256GCM, nil)
	nonce := bytes.Repeat([]byte{0x01}, 12)

	enc := mustOpen(t, m, algorithm.AES256GCM, key, WithNonce(nonce))
	enc.Absorb([]byte("associated data"))
	ct, err := enc.Encrypt([]byte("test"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if len(ct) != 4+16 {
		t.Fatalf("len(ciphertext) = %d, want 20", len(ct))
	}

	ok := mustOpen(t, m, algorithm.AES256GCM, key, WithNonce(nonce))
	ok.Absorb([]byte("associated data"))
	if pt, err := ok.Decrypt(ct); err != nil || string(pt) != "test" {
		t.Fatalf("Decrypt() = %q, %v", pt, err)
	}

	bad := mustOpen(t, m, algorithm.AES256GCM, key, WithNonce(nonce))
	bad.Absorb([]byte("associated datA"))
	if _, err := bad.Decrypt(ct); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Decrypt() with modified AD error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestSession_DecryptShortCiphertext(t *testing.T) {
	m := newTestManager(t)

	key, _ := m.GenerateKey(algorithm.ChaCha20Poly1305, nil)
	s := mustOpen(t, m, algorithm.ChaCha20Poly1305, key, WithNonce(make([]byte, 12)))

	if _, err := s.Decrypt(make([]byte, 15)); !errors.Is(err, ErrInvalidInputLength) {
		t.Errorf("Decrypt() error = %v, want ErrInvalidInputLength", err)
	}
	if s.State() != StateOpen {
		t.Errorf("State() = %v, want Open", s.State())
	}
}

func TestSession_AEADSqueezeTag(t *testing.T) {
	m := newTestManager(t)

	key, _ := m.GenerateKey(algorithm.AES128CCM, nil)
	nonce := make([]byte, 13)

	tagOf := func(ad string) *Tag {
		s := mustOpen(t, m, algorithm.AES128CCM, key, WithNonce(nonce))
		s.Absorb([]byte(ad))
		tag, err := s.SqueezeTag()
		if err != nil {
			t.Fatalf("SqueezeTag() error = %v", err)
		}
		t.Cleanup(func() { tag.Close() })
		return tag
	}

	a := tagOf("header")
	raw, _ := a.Bytes()
	if len(raw) != 16 || a.Len() != 16 {
		t.Fatalf("tag length = %d (Len %d), want 16", len(raw), a.Len())
	}
	if !tagOf("header").Verify(raw) {
		t.Error("same AD produced a different tag")
	}
	if tagOf("Header").Verify(raw) {
		t.Error("different AD produced the same tag")
	}
}

func TestSession_HKDF(t *testing.T) {
	m := newTestManager(t)

	ikm, _ := hex.DecodeString("0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b")
	salt, _ := hex.DecodeString("000102030405060708090a0b0c")
	info, _ := hex.DecodeString("f0f1f2f3f4f5f6f7f8f9")
	want, _ := hex.DecodeString("3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865")

	key, err := m.ImportKey(algorithm.HKDFExtractSHA256, ikm)
	if err != nil {
		t.Fatalf("ImportKey() error = %v", err)
	}

	extract := mustOpen(t, m, algorithm.HKDFExtractSHA256, key, nil)
	extract.Absorb(salt)
	prk, err := extract.SqueezeKey(algorithm.HKDFExpandSHA256)
	if err != nil {
		t.Fatalf("SqueezeKey() error = %v", err)
	}
	if prk.Algorithm() != algorithm.HKDFExpandSHA256 {
		t.Errorf("Algorithm() = %s", prk.Algorithm())
	}

	expand := func(n int) ([]byte, error) {
		s := mustOpen(t, m, algorithm.HKDFExpandSHA256, prk, nil)
		s.Absorb(info)
		return s.Squeeze(n)
	}

	okm, err := expand(42)
	if err != nil {
		t.Fatalf("Squeeze() error = %v", err)
	}
	if !bytes.Equal(okm, want) {
		t.Errorf("OKM = %x, want %x", okm, want)
	}

	long, err := expand(255 * 32)
	if err != nil || len(long) != 255*32 {
		t.Errorf("Squeeze(8160) = %d bytes, %v", len(long), err)
	}
	if _, err := expand(255*32 + 1); !errors.Is(err, ErrInvalidInputLength) {
		t.Errorf("Squeeze(8161) error = %v, want ErrInvalidInputLength", err)
	}
}

func TestSession_SqueezeKeyTargets(t *testing.T) {
	m := newTestManager(t)
	ikm, _ := m.ImportKey(algorithm.HKDFExtractSHA512, []byte("input keying material"))

	s := mustOpen(t, m, algorithm.HKDFExtractSHA512, ikm, nil)
	if _, err := s.SqueezeKey(algorithm.SHA256); !errors.Is(err, ErrAlgorithmMismatch) {
		t.Fatalf("SqueezeKey(SHA-256) error = %v, want ErrAlgorithmMismatch", err)
	}
	if _, err := s.SqueezeKey("NOPE"); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("SqueezeKey(NOPE) error = %v, want ErrUnsupportedAlgorithm", err)
	}
	if s.State() != StateOpen {
		t.Fatalf("State() = %v, want Open", s.State())
	}

	// A 64-byte PRK does not fit AES-256-GCM.
	if _, err := s.SqueezeKey(algorithm.AES256GCM); !errors.Is(err, ErrInvalidKeyLength) {
		t.Fatalf("SqueezeKey(AES-256-GCM) error = %v, want ErrInvalidKeyLength", err)
	}
	if s.State() != StateFinalized {
		t.Errorf("State() = %v, want Finalized", s.State())
	}

	s2 := mustOpen(t, m, algorithm.HKDFExtractSHA512, ikm, nil)
	k, err := s2.SqueezeKey(algorithm.HMACSHA512)
	if err != nil {
		t.Fatalf("SqueezeKey(HMAC/SHA-512) error = %v", err)
	}
	raw, _ := k.Export()
	if len(raw) != 64 {
		t.Errorf("len(key) = %d, want 64", len(raw))
	}
}

func TestSession_Option(t *testing.T) {
	m := newTestManager(t)

	key, _ := m.GenerateKey(algorithm.XChaCha20Poly1305, nil)
	nonce := bytes.Repeat([]byte{9}, 24)
	s := mustOpen(t, m, algorithm.XChaCha20Poly1305, key, WithNonce(nonce))

	got, err := s.Option(OptionNonce)
	if err != nil {
		t.Fatalf("Option() error = %v", err)
	}
	if !bytes.Equal(got, nonce) {
		t.Errorf("Option() = %x, want %x", got, nonce)
	}
	if _, err := s.Option("context"); !errors.Is(err, ErrUnsupportedOption) {
		t.Errorf("Option(context) error = %v, want ErrUnsupportedOption", err)
	}

	s.Close()
	if _, err := s.Option(OptionNonce); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Option() after Close error = %v, want ErrInvalidState", err)
	}
}

func TestSession_Descriptor(t *testing.T) {
	m := newTestManager(t)
	key, _ := m.GenerateKey(algorithm.HKDFExpandSHA256, nil)
	s := mustOpen(t, m, algorithm.HKDFExpandSHA256, key, nil)

	if s.Algorithm() != algorithm.HKDFExpandSHA256 {
		t.Errorf("Algorithm() = %s", s.Algorithm())
	}
	if s.MaxTagLen() != 0 {
		t.Errorf("MaxTagLen() = %d, want 0", s.MaxTagLen())
	}
	d := s.Descriptor()
	d.Compatible[0] = "x"
	if s.Descriptor().Compatible[0] != algorithm.HKDFExtractSHA256 {
		t.Error("Descriptor() returned an alias")
	}
}
