// Package main is the entry point for the miid CLI
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/james-see/miid/pkg/config"
	"github.com/james-see/miid/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "miid",
		Short: "Inspect, verify and convert Standard MIDI Files",
		Long: `miid reads and writes format 1 Standard MIDI Files with one time track
and one single-channel track per instrument.

Examples:
  miid inspect song.mid
  miid roundtrip song.mid
  miid convert song.mid -o song.yaml
  miid convert song.yaml -o song.mid
  miid new blank.mid --tempo 125 --track Piano:1
  miid render song.mid -o song.wav
  miid pianoroll song.mid -o song.png
  miid tui
  miid serve --port 8080`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level ("+strings.Join(logger.Levels, ", ")+")")
	pf.BoolVar(&a.lenient, "lenient", false, "Fold channel mismatches into the track channel instead of failing")

	rootCmd.AddCommand(
		a.inspectCmd(),
		a.roundTripCmd(),
		a.convertCmd(),
		a.newCmd(),
		a.renderCmd(),
		a.pianoRollCmd(),
		a.tuiCmd(),
		a.serveCmd(),
	)
	return rootCmd
}
