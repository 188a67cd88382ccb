package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// RFC 4231 test cases. sha512 is only filled in where it is checked.
var rfc4231 = []struct {
	name   string
	key    []byte
	msg    []byte
	sha256 string
	sha512 string
}{
	{
		name:   "1",
		key:    bytes.Repeat([]byte{0x0b}, 20),
		msg:    []byte("Hi There"),
		sha256: "b0344c61d8db38535ca8afceaf0bf12b881dc200c9833da726e9376c2e32cff7",
		sha512: "87aa7cdea5ef619d4ff0b4241a1d6cb02379f4e2ce4ec2787ad0b30545e17cdedaa833b7d6b8a702038b274eaea3f4e4be9d914eeb61f1702e696c203a126854",
	},
	{
		name:   "2 short key",
		key:    []byte("Jefe"),
		msg:    []byte("what do ya want for nothing?"),
		sha256: "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		sha512: "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea2505549758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737",
	},
	{
		name:   "3",
		key:    bytes.Repeat([]byte{0xaa}, 20),
		msg:    bytes.Repeat([]byte{0xdd}, 50),
		sha256: "773ea91e36800e46854db8ebd09181a72959098b3ef8c122d9635514ced565fe",
	},
	{
		name: "4",
		key: []byte{
			0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d,
			0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0x19,
		},
		msg:    bytes.Repeat([]byte{0xcd}, 50),
		sha256: "82558a389a443c0ea4cc819899f2083a85f0faa3e578f8077a2e3ff46729665b",
	},
	{
		name:   "5 untruncated",
		key:    bytes.Repeat([]byte{0x0c}, 20),
		msg:    []byte("Test With Truncation"),
		sha256: "a3b6167473100ee06e0c796c2955552bfa6f7c0a6a8aef8b93f860aab0cd20c5",
	},
	{
		name:   "6 long key",
		key:    bytes.Repeat([]byte{0xaa}, 131),
		msg:    []byte("Test Using Larger Than Block-Size Key - Hash Key First"),
		sha256: "60e431591ee0b67f0d8a26aacbf5b77f8e0bc6213728c5140546040f0ee37f54",
	},
	{
		name: "7 long key and message",
		key:  bytes.Repeat([]byte{0xaa}, 131),
		msg: []byte("This is a test using a larger than block-size key and a larger than " +
			"block-size data. The key needs to be hashed before being used by the HMAC algorithm."),
		sha256: "9b09ffa71b942fcb27635fbcd5b0e944bfdc63644f0713938a7f51535c3a35e2",
	},
}

// mac computes the HMAC of msg under key in one call.
func mac(h HashFunc, key, msg []byte) []byte {
	m := NewHMAC(h, key)
	m.Write(msg)
	return m.Sum(nil)
}

func TestHMAC_RFC4231(t *testing.T) {
	for _, tc := range rfc4231 {
		t.Run(tc.name, func(t *testing.T) {
			for _, h := range []struct {
				name string
				fn   HashFunc
				want string
			}{
				{"SHA-256", NewSHA256, tc.sha256},
				{"SHA-512", NewSHA512, tc.sha512},
			} {
				if h.want == "" {
					continue
				}
				if got := hex.EncodeToString(mac(h.fn, tc.key, tc.msg)); got != h.want {
					t.Errorf("HMAC(%s) = %s, want %s", h.name, got, h.want)
				}
			}
		})
	}
}

func TestNewHMAC_Incremental(t *testing.T) {
	key := []byte("incremental key")
	msg := []byte("absorbed in three pieces rather than one")

	h := NewHMAC(NewSHA256, key)
	h.Write(msg[:7])
	h.Write(msg[7:20])
	h.Write(msg[20:])

	if got, want := h.Sum(nil), mac(NewSHA256, key, msg); !bytes.Equal(got, want) {
		t.Errorf("incremental HMAC = %x, want %x", got, want)
	}
}

func TestHMACEqual(t *testing.T) {
	a := mac(NewSHA256, []byte("k"), []byte("m"))
	b := append([]byte(nil), a...)
	c := append([]byte(nil), a...)
	c[len(c)-1] ^= 0x80

	tests := []struct {
		name string
		x, y []byte
		want bool
	}{
		{"equal", a, b, true},
		{"last byte differs", a, c, false},
		{"prefix", a, a[:16], false},
		{"both empty", nil, []byte{}, true},
	}
	for _, tc := range tests {
		if got := HMACEqual(tc.x, tc.y); got != tc.want {
			t.Errorf("HMACEqual(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHMAC_EmptyInputs(t *testing.T) {
	for _, in := range []struct{ key, msg []byte }{
		{[]byte("key"), nil},
		{nil, []byte("data")},
		{nil, nil},
	} {
		if got := mac(NewSHA256, in.key, in.msg); len(got) != SHA256Size {
			t.Errorf("len(mac(%q, %q)) = %d, want %d", in.key, in.msg, len(got), SHA256Size)
		}
	}
}

func BenchmarkHMACSHA256(b *testing.B) {
	key := make([]byte, 32)
	msg := make([]byte, 1024)

	b.SetBytes(int64(len(msg)))
	for i := 0; i < b.N; i++ {
		mac(NewSHA256, key, msg)
	}
}
