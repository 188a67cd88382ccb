// symcrypt runs one-shot symmetric operations from the command line.
//
// Byte arguments (keys, nonces, tags, salts) are hex encoded. Messages are
// read from --in, the first argument, or stdin, in that order.
//
// Usage:
//
//	symcrypt algorithms
//	symcrypt hash --alg SHA-256 test
//	symcrypt keygen --alg AES-256-GCM
//	symcrypt auth --key 4a656665 "what do ya want for nothing?"
//	symcrypt verify --key 4a656665 --tag 5bdc... "what do ya want for nothing?"
//	symcrypt hkdf --ikm 0b0b... --salt 0001... --info f0f1... --length 42
//	symcrypt seal --alg AES-256-GCM --key <hex> --nonce <hex> --ad header msg
//	symcrypt open --alg AES-256-GCM --key <hex> --nonce <hex> --ad header <hex>
//
// Global flags:
//
//	--log-level  disabled, error, warn, info, debug or trace (default: disabled)
package main

import (
	"log"

	"github.com/backkem/symcrypto/cmd/symcrypt/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
