package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// seq returns n bytes counting up from start.
func seq(start byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}
	return b
}

// RFC 5869 appendix A, SHA-256 cases.
var rfc5869 = []struct {
	name            string
	ikm, salt, info []byte
	prk, okm        string
}{
	{
		name: "1",
		ikm:  bytes.Repeat([]byte{0x0b}, 22),
		salt: seq(0x00, 13),
		info: seq(0xf0, 10),
		prk:  "077709362c2e32df0ddc3f0dc47bba6390b6c73bb50f9c3122ec844ad7c2b3e5",
		okm:  "3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865",
	},
	{
		name: "2 long inputs",
		ikm:  seq(0x00, 80),
		salt: seq(0x60, 80),
		info: seq(0xb0, 80),
		prk:  "06a6b88c5853361a06104c9ceb35b45cef760014904671014a193f40c15fc244",
		okm: "b11e398dc80327a1c8e7f78c596a49344f012eda2d4efad8a050cc4c19afa97c" +
			"59045a99cac7827271cb41c65e590e09da3275600c2f09b8367793a9aca3db71" +
			"cc30c58179ec3e87c14c01d5c1f3434f1d87",
	},
	{
		name: "3 empty salt and info",
		ikm:  bytes.Repeat([]byte{0x0b}, 22),
		prk:  "19ef24a32c717b167f33a91d6f648bdf96596776afdb6377ac434c1c293ccb04",
		okm:  "8da4e775a563c18f715f802a063c5a31b8a11f5c5ee1879ec3454e5f3c738d2d9d201395faa4b61a96c8",
	},
}

func TestHKDF_RFC5869(t *testing.T) {
	for _, tc := range rfc5869 {
		t.Run(tc.name, func(t *testing.T) {
			n := len(tc.okm) / 2

			prk := HKDFExtract(NewSHA256, tc.ikm, tc.salt)
			if got := hex.EncodeToString(prk); got != tc.prk {
				t.Errorf("HKDFExtract() = %s, want %s", got, tc.prk)
			}

			okm, err := HKDFExpand(NewSHA256, prk, tc.info, n)
			if err != nil {
				t.Fatalf("HKDFExpand() error = %v", err)
			}
			if got := hex.EncodeToString(okm); got != tc.okm {
				t.Errorf("HKDFExpand() = %s, want %s", got, tc.okm)
			}
		})
	}
}

func TestHKDFExpand_Length(t *testing.T) {
	tests := []struct {
		h       HashFunc
		size    int
		length  int
		wantErr bool
	}{
		{NewSHA256, SHA256Size, 0, false},
		{NewSHA256, SHA256Size, SHA256Size, false},
		{NewSHA256, SHA256Size, HKDFMaxBlocks * SHA256Size, false},
		{NewSHA256, SHA256Size, HKDFMaxBlocks*SHA256Size + 1, true},
		{NewSHA256, SHA256Size, -1, true},
		{NewSHA512, SHA512Size, HKDFMaxBlocks * SHA512Size, false},
		{NewSHA512, SHA512Size, HKDFMaxBlocks*SHA512Size + 1, true},
	}

	for _, tc := range tests {
		prk := HKDFExtract(tc.h, []byte("ikm"), nil)
		if len(prk) != tc.size {
			t.Fatalf("len(HKDFExtract()) = %d, want %d", len(prk), tc.size)
		}

		out, err := HKDFExpand(tc.h, prk, nil, tc.length)
		if tc.wantErr {
			if err != ErrHKDFLength {
				t.Errorf("HKDFExpand(%d) error = %v, want ErrHKDFLength", tc.length, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("HKDFExpand(%d) error = %v", tc.length, err)
		}
		if len(out) != tc.length {
			t.Errorf("len(HKDFExpand(%d)) = %d", tc.length, len(out))
		}
	}
}

func TestHKDFExpand_PrefixStable(t *testing.T) {
	prk := HKDFExtract(NewSHA256, []byte("ikm"), []byte("salt"))

	long, _ := HKDFExpand(NewSHA256, prk, []byte("info"), 100)
	short, _ := HKDFExpand(NewSHA256, prk, []byte("info"), 33)
	if !bytes.Equal(short, long[:33]) {
		t.Error("shorter output is not a prefix of the longer one")
	}

	other, _ := HKDFExpand(NewSHA256, prk, []byte("inf0"), 33)
	if bytes.Equal(short, other) {
		t.Error("different info produced the same output")
	}
}

func BenchmarkHKDFSHA256(b *testing.B) {
	ikm, salt, info := seq(0, 32), seq(32, 32), seq(64, 32)

	for i := 0; i < b.N; i++ {
		_, _ = HKDFExpand(NewSHA256, HKDFExtract(NewSHA256, ikm, salt), info, 32)
	}
}
