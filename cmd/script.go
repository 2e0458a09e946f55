package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rook-sec/padoracle/cache"
	"github.com/rook-sec/padoracle/config"
	"github.com/rook-sec/padoracle/ctext"
	"github.com/rook-sec/padoracle/events"
	"github.com/rook-sec/padoracle/oracle"
)

func newScriptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script <path>",
		Short: "Attack a local subprocess padding oracle",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runScript(c, args[0])
		},
	}
	return cmd
}

func runScript(c *cobra.Command, path string) error {
	g, err := buildGlobal(config.NewScriptLocation(path))
	if err != nil {
		return err
	}

	ct, err := parseCiphertext(g)
	if err != nil {
		return fmt.Errorf("parsing ciphertext: %w", err)
	}

	urlEncode := ct.URLEncode
	encodeFn := func(b []byte) string {
		return ctext.EncodeBytes(b, ct.Encoding, urlEncode)
	}

	s := oracle.NewScript(path, encodeFn, g.ThreadDelayDuration())

	logger := newLogger(g.Verbosity)
	sink := events.NewLogrusSink(logger)

	return runAttack(c.Context(), g, ct, s, cache.NewConfig(path), sink)
}
