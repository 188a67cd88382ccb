// Package commands implements the symcrypt subcommands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backkem/symcrypto/pkg/symmetric"
	"github.com/pion/logging"
	"github.com/spf13/cobra"
)

var logLevels = map[string]logging.LogLevel{
	"disabled": logging.LogLevelDisabled,
	"error":    logging.LogLevelError,
	"warn":     logging.LogLevelWarn,
	"info":     logging.LogLevelInfo,
	"debug":    logging.LogLevelDebug,
	"trace":    logging.LogLevelTrace,
}

// app holds state shared by the subcommands of one invocation.
type app struct {
	logLevel string
}

// NewRootCommand returns the symcrypt command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "symcrypt",
		Short:         "Symmetric cryptography from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "disabled", "log level: disabled, error, warn, info, debug, trace")

	root.AddCommand(
		a.algorithmsCommand(),
		a.hashCommand(),
		a.keygenCommand(),
		a.authCommand(),
		a.verifyCommand(),
		a.hkdfCommand(),
		a.sealCommand(),
		a.openCommand(),
	)
	return root
}

// loggerFactory builds a factory writing to the command's stderr.
func (a *app) loggerFactory(cmd *cobra.Command) (logging.LoggerFactory, error) {
	level, ok := logLevels[strings.ToLower(a.logLevel)]
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", a.logLevel)
	}
	f := logging.NewDefaultLoggerFactory()
	f.Writer = cmd.ErrOrStderr()
	f.DefaultLogLevel = level
	return f, nil
}

// withManager runs fn with a Manager that is closed afterwards.
func (a *app) withManager(cmd *cobra.Command, fn func(m *symmetric.Manager) error) (err error) {
	factory, err := a.loggerFactory(cmd)
	if err != nil {
		return err
	}
	log := factory.NewLogger("symcrypt")

	m := symmetric.NewManager(symmetric.Config{LoggerFactory: factory})
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	log.Debugf("running %s", cmd.CommandPath())
	if err := fn(m); err != nil {
		log.Debugf("%s failed: %v", cmd.Name(), err)
		return err
	}
	return nil
}

// readInput returns the contents of --in, the first argument, or stdin.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if path, _ := cmd.Flags().GetString("in"); path != "" {
		return os.ReadFile(filepath.Clean(path))
	}
	if len(args) > 0 {
		return []byte(args[0]), nil
	}
	return io.ReadAll(cmd.InOrStdin())
}

// hexFlag decodes a hex flag. Empty flags decode to nil.
func hexFlag(cmd *cobra.Command, name string) ([]byte, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return b, nil
}

// requiredHexFlag is hexFlag for flags that must be set.
func requiredHexFlag(cmd *cobra.Command, name string) ([]byte, error) {
	b, err := hexFlag(cmd, name)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("--%s is required", name)
	}
	return b, nil
}

func printHex(cmd *cobra.Command, b []byte) {
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
}

func addInputFlag(cmd *cobra.Command) {
	cmd.Flags().String("in", "", "read the message from this file")
}
