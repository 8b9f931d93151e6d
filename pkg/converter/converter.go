package converter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/james-see/miid/pkg/smf"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi", ".smf":
		return FormatMIDI
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
		return FormatJSON
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Division > 0 {
		return FormatYAML
	}

	return FormatUnknown
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}

	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	outputData, err := c.Convert(data, inputFormat, outputFormat)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// Convert converts data between formats
func (c *Converter) Convert(data []byte, from, to Format) ([]byte, error) {
	switch {
	case from == FormatMIDI && to == FormatYAML:
		return c.MIDIToYAML(data)
	case from == FormatMIDI && to == FormatJSON:
		return c.MIDIToJSON(data)
	case from == FormatMIDI && to == FormatMIDI:
		return c.MIDIToMIDI(data)
	case from == FormatYAML && to == FormatMIDI:
		return c.YAMLToMIDI(data)
	case from == FormatJSON && to == FormatMIDI:
		return c.JSONToMIDI(data)
	case from == FormatYAML && to == FormatJSON:
		return c.YAMLToJSON(data)
	case from == FormatJSON && to == FormatYAML:
		return c.JSONToYAML(data)
	default:
		return nil, fmt.Errorf("unsupported conversion: %s to %s", from, to)
	}
}

// MIDIToYAML converts MIDI data to a YAML song document
func (c *Converter) MIDIToYAML(midiData []byte) ([]byte, error) {
	song, err := c.Decode(midiData)
	if err != nil {
		return nil, err
	}
	return EncodeYAML(FromSong(song))
}

// MIDIToJSON converts MIDI data to a JSON song document
func (c *Converter) MIDIToJSON(midiData []byte) ([]byte, error) {
	song, err := c.Decode(midiData)
	if err != nil {
		return nil, err
	}
	return EncodeJSON(FromSong(song))
}

// MIDIToMIDI decodes and re-encodes MIDI data, normalising running status,
// dropped events and the time signature trailer
func (c *Converter) MIDIToMIDI(midiData []byte) ([]byte, error) {
	song, err := c.Decode(midiData)
	if err != nil {
		return nil, err
	}
	return smf.Marshal(song)
}

// YAMLToMIDI converts a YAML song document to MIDI data
func (c *Converter) YAMLToMIDI(yamlData []byte) ([]byte, error) {
	doc, err := DecodeYAML(yamlData)
	if err != nil {
		return nil, err
	}
	return documentToMIDI(doc)
}

// JSONToMIDI converts a JSON song document to MIDI data
func (c *Converter) JSONToMIDI(jsonData []byte) ([]byte, error) {
	doc, err := DecodeJSON(jsonData)
	if err != nil {
		return nil, err
	}
	return documentToMIDI(doc)
}

// YAMLToJSON rewrites a YAML song document as JSON
func (c *Converter) YAMLToJSON(yamlData []byte) ([]byte, error) {
	doc, err := DecodeYAML(yamlData)
	if err != nil {
		return nil, err
	}
	if _, err := doc.ToSong(); err != nil {
		return nil, err
	}
	return EncodeJSON(doc)
}

// JSONToYAML rewrites a JSON song document as YAML
func (c *Converter) JSONToYAML(jsonData []byte) ([]byte, error) {
	doc, err := DecodeJSON(jsonData)
	if err != nil {
		return nil, err
	}
	if _, err := doc.ToSong(); err != nil {
		return nil, err
	}
	return EncodeYAML(doc)
}

func documentToMIDI(doc *Document) ([]byte, error) {
	song, err := doc.ToSong()
	if err != nil {
		return nil, err
	}
	return smf.Marshal(song)
}

// EncodeYAML renders a document as YAML
func EncodeYAML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeYAML parses a YAML document
func DecodeYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &doc, nil
}

// EncodeJSON renders a document as indented JSON
func EncodeJSON(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeJSON parses a JSON document
func DecodeJSON(data []byte) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &doc, nil
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"midi -> midi",
		"midi -> yaml",
		"midi -> json",
		"yaml -> midi",
		"json -> midi",
		"yaml -> json",
		"json -> yaml",
	}
}
