// Package cmd wires the Cobra CLI surface (spec §6) to package config and,
// through it, to the attack engine. Grounded on open-policy-agent/opa's
// cmd/commands.go pattern of one root command with a tree of subcommands,
// each registered from its own init-style constructor.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rook-sec/padoracle/block"
	"github.com/rook-sec/padoracle/config"
	"github.com/rook-sec/padoracle/ctext"
)

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// commonFlags holds the persistent flag values shared by every attack
// subcommand, bound once on the root command so web and script don't
// duplicate their definitions.
type commonFlags struct {
	blockSize   int
	decrypt     string
	encrypt     string
	noIV        bool
	verbose     int
	threads     int
	delayMS     int
	output      string
	encoding    string
	noURLEncode bool
	noCache     bool
}

var flags commonFlags

// NewRootCommand builds the padoracle root command with every subcommand
// registered.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "padoracle",
		Short:         "Automates CBC padding-oracle attacks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.IntVar(&flags.blockSize, "block-size", 16, "cipher block size in bytes: 8 or 16")
	pf.StringVar(&flags.decrypt, "decrypt", "", "ciphertext to decrypt")
	pf.StringVar(&flags.encrypt, "encrypt", "", "plaintext to forge a ciphertext for (requires --decrypt as the seed)")
	pf.BoolVar(&flags.noIV, "no-iv", false, "treat --decrypt as not including a leading IV block")
	pf.CountVarP(&flags.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	pf.IntVar(&flags.threads, "threads", int(config.DefaultThreadCount), "worker pool size")
	pf.IntVar(&flags.delayMS, "delay", 0, "milliseconds to sleep before each oracle request")
	pf.StringVarP(&flags.output, "output", "o", "", "write the result to this file instead of stdout")
	pf.StringVar(&flags.encoding, "encoding", "auto", "ciphertext encoding: auto, hex, base64, base64url")
	pf.BoolVar(&flags.noURLEncode, "no-url-encode", false, "don't URL-encode the output even if the input was")
	pf.BoolVar(&flags.noCache, "no-cache", false, "don't read or write the persistent solved-block cache")

	root.AddCommand(newWebCommand())
	root.AddCommand(newScriptCommand())
	root.AddCommand(newSetupCommand())

	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// buildGlobal assembles a config.Global from the bound persistent flags and
// the oracle location resolved by the calling subcommand.
func buildGlobal(loc config.OracleLocation) (config.Global, error) {
	size, err := block.ParseSize(flags.blockSize)
	if err != nil {
		return config.Global{}, err
	}
	enc, err := ctext.ParseEncoding(flags.encoding)
	if err != nil {
		return config.Global{}, err
	}
	threads, err := config.ParseThreadCount(flags.threads)
	if err != nil {
		return config.Global{}, err
	}

	g := config.New(loc, size)
	g.Threads = threads
	g.Delay = config.ThreadDelay(msToDuration(flags.delayMS))
	g.Encoding = enc
	g.NoIV = flags.noIV
	g.Verbosity = flags.verbose
	g.OutputFile = flags.output
	g.NoURLEncode = flags.noURLEncode
	g.NoCache = flags.noCache

	g.CiphertextInput = flags.decrypt
	if flags.encrypt != "" {
		g.Mode = config.ModeEncrypt
		g.Plaintext = flags.encrypt
	}
	if g.CiphertextInput == "" {
		return config.Global{}, fmt.Errorf("--decrypt is required (it also seeds --encrypt)")
	}

	return g, nil
}

func newLogger(verbosity int) *logrus.Logger {
	l := logrus.New()
	switch {
	case verbosity >= 2:
		l.SetLevel(logrus.DebugLevel)
	case verbosity == 1:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

func writeResult(path, s string) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, s)
		return err
	}
	return os.WriteFile(path, []byte(s+"\n"), 0o644)
}
