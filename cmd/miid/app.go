package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/james-see/miid/pkg/config"
	"github.com/james-see/miid/pkg/converter"
	"github.com/james-see/miid/pkg/logger"
	"github.com/james-see/miid/pkg/pianoroll"
	"github.com/james-see/miid/pkg/smf"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	lenient    bool

	cfg  *config.Config
	conv *converter.Converter
}

// setup loads the config file, then the environment, then flags, in
// increasing precedence.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	if a.logLevel != "" {
		cfg.LogLevel = strings.ToLower(a.logLevel)
	}
	if a.lenient {
		cfg.ChannelPolicy = smf.ChannelLenient.String()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.InitLogger(cfg.LogLevel, cmd.ErrOrStderr()); err != nil {
		return err
	}

	a.cfg = cfg
	a.conv = converter.New(cfg.DecoderOptions())
	logger.GetLogger().Debug("configuration loaded", "path", path, "channel_policy", cfg.ChannelPolicy)
	return nil
}

func (a *app) pianoRollOptions() pianoroll.Options {
	return pianoroll.Options{BeatWidth: a.cfg.PianoRoll.BeatWidth, KeyHeight: a.cfg.PianoRoll.KeyHeight}
}

// loadSong reads a MIDI file or a YAML/JSON song document.
func (a *app) loadSong(path string) (*smf.Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	format := converter.DetectFormat(path)
	if format == converter.FormatUnknown {
		format = converter.DetectFormatFromContent(data)
	}

	var doc *converter.Document
	switch format {
	case converter.FormatMIDI:
		song, err := a.conv.Decode(data)
		if err != nil {
			return nil, err
		}
		if a.cfg.DebugDump {
			if err := converter.WriteDebugDump(song, a.cfg.DebugDumpPath); err != nil {
				return nil, err
			}
			logger.GetLogger().Debug("wrote debug dump", "path", a.cfg.DebugDumpPath)
		}
		return song, nil
	case converter.FormatYAML:
		doc, err = converter.DecodeYAML(data)
	case converter.FormatJSON:
		doc, err = converter.DecodeJSON(data)
	default:
		return nil, fmt.Errorf("cannot determine format of %s", path)
	}
	if err != nil {
		return nil, err
	}
	return doc.ToSong()
}

func getOutputPath(output, input, defaultExt string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}
