package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/james-see/miid/pkg/api"
	"github.com/james-see/miid/pkg/audition"
	"github.com/james-see/miid/pkg/converter"
	"github.com/james-see/miid/pkg/pianoroll"
	"github.com/james-see/miid/pkg/smf"
	"github.com/james-see/miid/pkg/tui"
)

func (a *app) inspectCmd() *cobra.Command {
	var asJSON, dump bool
	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Print a summary of every track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump {
				a.cfg.DebugDump = true
			}
			song, err := a.loadSong(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(converter.Summarize(song))
			}
			report, err := converter.Report(song)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&dump, "dump", false, "Re-encode the decoded song to the debug dump path")
	return cmd
}

func (a *app) roundTripCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "roundtrip <input.mid>",
		Short: "Decode, re-encode and verify a MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			res, err := a.conv.RoundTrip(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d tracks, %d bytes in, %d bytes out\n",
				args[0], len(res.Song.Tracks), res.InputSize, res.OutputSize)
			if res.Identical {
				fmt.Fprintln(out, "Re-encoded file is byte-identical")
			} else {
				fmt.Fprintln(out, "Re-encoded file decodes to the same song")
			}
			if output != "" {
				if err := os.WriteFile(output, res.Encoded, 0644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				fmt.Fprintf(out, "Wrote %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the re-encoded file here")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	var output string
	var useGoMIDI bool
	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Auto-detect and convert between formats",
		Long: `Converts between MIDI files and YAML or JSON song documents. The output
format is taken from the output file extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if converter.DetectFormat(output) == converter.FormatMIDI && useGoMIDI {
				song, err := a.loadSong(input)
				if err != nil {
					return err
				}
				data, err := converter.ExportGoMIDI(song)
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, data, 0644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
			} else if err := a.conv.ConvertFile(input, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s\n", input, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (required)")
	cmd.Flags().BoolVar(&useGoMIDI, "gomidi", false, "Write MIDI output with the gomidi encoder")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) newCmd() *cobra.Command {
	var (
		division int
		tempo    float64
		text     string
		tracks   []string
	)
	cmd := &cobra.Command{
		Use:   "new <output.mid>",
		Short: "Create a blank song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			song, err := newSong(division, tempo, text, tracks)
			if err != nil {
				return err
			}
			data, err := smf.Marshal(song)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d tracks\n", args[0], len(song.Tracks))
			return nil
		},
	}
	cmd.Flags().IntVar(&division, "division", smf.DefaultDivision, "Ticks per quarter note")
	cmd.Flags().Float64Var(&tempo, "tempo", 0, "Initial tempo in BPM (omit for none)")
	cmd.Flags().StringVar(&text, "text", "", "Song title")
	cmd.Flags().StringArrayVar(&tracks, "track", nil, "Add a voice track as name:channel (channel 1-16)")
	return cmd
}

// newSong builds a blank song. Track specs are name:channel with a 1-based
// channel.
func newSong(division int, tempo float64, text string, tracks []string) (*smf.Song, error) {
	song := smf.New()
	song.SetDivision(division)
	song.Text = text
	if tempo != 0 {
		if err := song.SetTempo(0, tempo); err != nil {
			return nil, err
		}
	}
	for _, spec := range tracks {
		name, ch, ok := strings.Cut(spec, ":")
		if !ok {
			return nil, fmt.Errorf("track %q: want name:channel", spec)
		}
		channel, err := strconv.Atoi(ch)
		if err != nil || channel < 1 || channel > 16 {
			return nil, fmt.Errorf("track %q: channel must be 1-16", spec)
		}
		song.AddTrack(name, channel-1)
	}
	return song, nil
}

func (a *app) renderCmd() *cobra.Command {
	var output, soundFont string
	var tail time.Duration
	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render a song to WAV through a SoundFont",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			song, err := a.loadSong(args[0])
			if err != nil {
				return err
			}
			if soundFont == "" {
				if soundFont, err = a.cfg.SoundFont(); err != nil {
					return err
				}
			}
			r, err := audition.LoadRenderer(soundFont, a.cfg.SampleRate)
			if err != nil {
				return err
			}
			r.Tail = tail
			output = getOutputPath(output, args[0], ".wav")
			frames, err := r.RenderFile(song, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s -> %s (%.1fs at %d Hz)\n",
				args[0], output, float64(frames)/float64(r.SampleRate()), r.SampleRate())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .wav file path")
	cmd.Flags().StringVar(&soundFont, "soundfont", "", "SoundFont (.sf2) to play through")
	cmd.Flags().DurationVar(&tail, "tail", audition.DefaultTail, "Silence rendered after the last event")
	return cmd
}

func (a *app) pianoRollCmd() *cobra.Command {
	var output string
	var beatWidth, keyHeight float64
	cmd := &cobra.Command{
		Use:   "pianoroll <input>",
		Short: "Draw a song as a PNG piano-roll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			song, err := a.loadSong(args[0])
			if err != nil {
				return err
			}
			opts := a.pianoRollOptions()
			if cmd.Flags().Changed("beat-width") {
				opts.BeatWidth = beatWidth
			}
			if cmd.Flags().Changed("key-height") {
				opts.KeyHeight = keyHeight
			}
			var buf bytes.Buffer
			if err := pianoroll.Draw(song, &buf, opts); err != nil {
				return err
			}
			output = getOutputPath(output, args[0], ".png")
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Drew %s -> %s\n", args[0], output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .png file path")
	cmd.Flags().Float64Var(&beatWidth, "beat-width", 0, "Pixels per quarter note")
	cmd.Flags().Float64Var(&keyHeight, "key-height", 0, "Pixels per key")
	return cmd
}

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(tui.Options{
				Decoder:   a.cfg.DecoderOptions(),
				PianoRoll: a.pianoRollOptions(),
			})
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = a.cfg.Server.Port
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting API server on port %s...\n", port)
			return api.StartServer(port, api.Options{
				Decoder:   a.cfg.DecoderOptions(),
				PianoRoll: a.pianoRollOptions(),
			})
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "8080", "Server port")
	return cmd
}
