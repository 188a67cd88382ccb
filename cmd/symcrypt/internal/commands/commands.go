package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/backkem/symcrypto/pkg/algorithm"
	"github.com/backkem/symcrypto/pkg/recipe"
	"github.com/backkem/symcrypto/pkg/symmetric"
	"github.com/spf13/cobra"
)

// ErrTagMismatch is returned by verify when the tag does not match.
var ErrTagMismatch = errors.New("tag mismatch")

// defaultXOFLength is the hash output length for algorithms without a
// fixed digest size.
const defaultXOFLength = 32

func (a *app) algorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List supported algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCATEGORY\tKEY\tNONCE\tTAG\tOPERATIONS")
			for _, name := range algorithm.Names() {
				d, err := algorithm.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					d.Name, d.Category, d.Key, d.NonceLen, d.MaxTagLen, d.Ops)
			}
			return w.Flush()
		},
	}
}

func (a *app) hashCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash [message]",
		Short: "Hash a message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, _ := cmd.Flags().GetString("alg")
			length, _ := cmd.Flags().GetInt("length")
			rawKey, err := hexFlag(cmd, "key")
			if err != nil {
				return err
			}
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(m *symmetric.Manager) error {
				if length == 0 {
					d, err := m.Describe(alg)
					if err != nil {
						return err
					}
					length = d.MaxOutputLen
					if length == 0 {
						length = defaultXOFLength
					}
				}

				var key *symmetric.Key
				if rawKey != nil {
					if key, err = m.ImportKey(alg, rawKey); err != nil {
						return err
					}
					defer key.Close()
				}

				digest, err := recipe.Hash(m, alg, msg, length, key)
				if err != nil {
					return err
				}
				printHex(cmd, digest)
				return nil
			})
		},
	}
	cmd.Flags().String("alg", algorithm.SHA256, "hash algorithm")
	cmd.Flags().Int("length", 0, "output length in bytes (default: the digest size)")
	cmd.Flags().String("key", "", "hex key for keyed hashes")
	addInputFlag(cmd)
	return cmd
}

func (a *app) keygenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			alg, _ := cmd.Flags().GetString("alg")
			return a.withManager(cmd, func(m *symmetric.Manager) error {
				key, err := m.GenerateKey(alg, nil)
				if err != nil {
					return err
				}
				defer key.Close()

				raw, err := key.Export()
				if err != nil {
					return err
				}
				printHex(cmd, raw)
				return nil
			})
		},
	}
	cmd.Flags().String("alg", algorithm.AES256GCM, "algorithm the key is for")
	return cmd
}

// authFlags adds the flags shared by auth and verify.
func authFlags(cmd *cobra.Command) {
	cmd.Flags().String("alg", algorithm.HMACSHA256, "MAC algorithm")
	cmd.Flags().String("key", "", "hex key (required)")
	addInputFlag(cmd)
}

func (a *app) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth [message]",
		Short: "Compute a message authentication tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, _ := cmd.Flags().GetString("alg")
			rawKey, err := requiredHexFlag(cmd, "key")
			if err != nil {
				return err
			}
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(m *symmetric.Manager) error {
				key, err := m.ImportKey(alg, rawKey)
				if err != nil {
					return err
				}
				defer key.Close()

				tag, err := recipe.Auth(m, msg, key)
				if err != nil {
					return err
				}
				printHex(cmd, tag)
				return nil
			})
		},
	}
	authFlags(cmd)
	return cmd
}

func (a *app) verifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [message]",
		Short: "Verify a message authentication tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, _ := cmd.Flags().GetString("alg")
			rawKey, err := requiredHexFlag(cmd, "key")
			if err != nil {
				return err
			}
			tag, err := requiredHexFlag(cmd, "tag")
			if err != nil {
				return err
			}
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(m *symmetric.Manager) error {
				key, err := m.ImportKey(alg, rawKey)
				if err != nil {
					return err
				}
				defer key.Close()

				ok, err := recipe.AuthVerify(m, msg, key, tag)
				if err != nil {
					return err
				}
				if !ok {
					return ErrTagMismatch
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
	authFlags(cmd)
	cmd.Flags().String("tag", "", "hex tag to verify (required)")
	return cmd
}

func (a *app) hkdfCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hkdf",
		Short: "Derive key material with HKDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hashName, _ := cmd.Flags().GetString("hash")
			length, _ := cmd.Flags().GetInt("length")
			ikm, err := requiredHexFlag(cmd, "ikm")
			if err != nil {
				return err
			}
			salt, err := hexFlag(cmd, "salt")
			if err != nil {
				return err
			}
			info, err := hexFlag(cmd, "info")
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(m *symmetric.Manager) error {
				key, err := m.ImportKey("HKDF-EXTRACT/"+hashName, ikm)
				if err != nil {
					return err
				}
				defer key.Close()

				prk, err := recipe.HKDFExtract(m, "HKDF-EXPAND/"+hashName, key, salt)
				if err != nil {
					return err
				}
				defer prk.Close()

				okm, err := recipe.HKDFExpand(m, prk, info, length)
				if err != nil {
					return err
				}
				printHex(cmd, okm)
				return nil
			})
		},
	}
	cmd.Flags().String("hash", "SHA-256", "hash function: SHA-256 or SHA-512")
	cmd.Flags().String("ikm", "", "hex input keying material (required)")
	cmd.Flags().String("salt", "", "hex salt")
	cmd.Flags().String("info", "", "hex context info")
	cmd.Flags().Int("length", 32, "output length in bytes")
	return cmd
}

func aeadFlags(cmd *cobra.Command) {
	cmd.Flags().String("alg", algorithm.AES256GCM, "AEAD algorithm")
	cmd.Flags().String("key", "", "hex key (required)")
	cmd.Flags().String("nonce", "", "hex nonce (required)")
	cmd.Flags().String("ad", "", "associated data")
	addInputFlag(cmd)
}

// aeadArgs reads the flags shared by seal and open.
func aeadArgs(cmd *cobra.Command) (alg string, key, nonce, ad []byte, err error) {
	alg, _ = cmd.Flags().GetString("alg")
	if key, err = requiredHexFlag(cmd, "key"); err != nil {
		return "", nil, nil, nil, err
	}
	if nonce, err = requiredHexFlag(cmd, "nonce"); err != nil {
		return "", nil, nil, nil, err
	}
	adString, _ := cmd.Flags().GetString("ad")
	return alg, key, nonce, []byte(adString), nil
}

func (a *app) sealCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seal [message]",
		Short: "Encrypt and authenticate a message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, rawKey, nonce, ad, err := aeadArgs(cmd)
			if err != nil {
				return err
			}
			detached, _ := cmd.Flags().GetBool("detached")
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(m *symmetric.Manager) error {
				key, err := m.ImportKey(alg, rawKey)
				if err != nil {
					return err
				}
				defer key.Close()

				if detached {
					out, err := recipe.SealDetached(m, key, nonce, ad, msg)
					if err != nil {
						return err
					}
					printHex(cmd, out.Ciphertext)
					printHex(cmd, out.Tag)
					return nil
				}

				out, err := recipe.Seal(m, key, nonce, ad, msg)
				if err != nil {
					return err
				}
				printHex(cmd, out)
				return nil
			})
		},
	}
	aeadFlags(cmd)
	cmd.Flags().Bool("detached", false, "print the ciphertext and the tag on separate lines")
	return cmd
}

func (a *app) openCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [hex-ciphertext]",
		Short: "Verify and decrypt a sealed message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, rawKey, nonce, ad, err := aeadArgs(cmd)
			if err != nil {
				return err
			}
			tag, err := hexFlag(cmd, "tag")
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ciphertext, err := hex.DecodeString(strings.TrimSpace(string(input)))
			if err != nil {
				return fmt.Errorf("invalid ciphertext: %w", err)
			}

			return a.withManager(cmd, func(m *symmetric.Manager) error {
				key, err := m.ImportKey(alg, rawKey)
				if err != nil {
					return err
				}
				defer key.Close()

				var plaintext []byte
				if tag != nil {
					plaintext, err = recipe.OpenDetached(m, key, nonce, ad, ciphertext, tag)
				} else {
					plaintext, err = recipe.Open(m, key, nonce, ad, ciphertext)
				}
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(plaintext)
				return err
			})
		},
	}
	aeadFlags(cmd)
	cmd.Flags().String("tag", "", "hex tag for a detached ciphertext")
	return cmd
}
