// Package api provides the REST API server for miid
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/miid/pkg/converter"
	"github.com/james-see/miid/pkg/pianoroll"
	"github.com/james-see/miid/pkg/smf"
)

// @title miid API
// @version 1.0
// @description API for inspecting, round-tripping and converting Standard MIDI Files
// @host localhost:8080
// @BasePath /api/v1

// maxUpload caps request bodies.
const maxUpload = 16 << 20

// Options configures the handlers.
type Options struct {
	Decoder   smf.Options
	PianoRoll pianoroll.Options
}

type server struct {
	conv *converter.Converter
	roll pianoroll.Options
	log  *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Decoder.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &server{conv: converter.New(opts.Decoder), roll: opts.PianoRoll, log: log}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.POST("/inspect", s.handleInspect)
		v1.POST("/roundtrip", s.handleRoundTrip)
		v1.POST("/convert/midi2yaml", s.handleMIDIToYAML)
		v1.POST("/convert/midi2json", s.handleMIDIToJSON)
		v1.POST("/convert/yaml2midi", s.handleYAMLToMIDI)
		v1.POST("/convert/json2midi", s.handleJSONToMIDI)
		v1.POST("/pianoroll", s.handlePianoRoll)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the specified port
func StartServer(port string, opts Options) error {
	return NewRouter(opts).Run(":" + port)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "miid",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"midi", "yaml", "json"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// handleInspect godoc
// @Summary Inspect a MIDI file
// @Description Upload a MIDI file and receive a per-track summary
// @Tags inspect
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to inspect"
// @Success 200 {object} converter.Summary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/inspect [post]
func (s *server) handleInspect(c *gin.Context) {
	data, _, ok := readUpload(c)
	if !ok {
		return
	}
	song, err := s.conv.Decode(data)
	if err != nil {
		s.decodeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, converter.Summarize(song))
}

// handleRoundTrip godoc
// @Summary Round-trip a MIDI file
// @Description Decode, re-encode and verify a MIDI file
// @Tags inspect
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to check"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/roundtrip [post]
func (s *server) handleRoundTrip(c *gin.Context) {
	data, _, ok := readUpload(c)
	if !ok {
		return
	}
	res, err := s.conv.RoundTrip(data)
	if err != nil {
		if errors.Is(err, converter.ErrRoundTrip) || errors.Is(err, converter.ErrCrossCheck) {
			s.log.Error("round trip failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		s.decodeFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"input_size":  res.InputSize,
		"output_size": res.OutputSize,
		"identical":   res.Identical,
		"tracks":      len(res.Song.Tracks),
	})
}

// handleMIDIToYAML godoc
// @Summary Convert MIDI to YAML
// @Description Upload a MIDI file and receive a YAML song document
// @Tags convert
// @Accept multipart/form-data
// @Produce application/x-yaml
// @Param file formData file true "MIDI file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/midi2yaml [post]
func (s *server) handleMIDIToYAML(c *gin.Context) {
	s.handleConversion(c, converter.FormatMIDI, converter.FormatYAML)
}

// handleMIDIToJSON godoc
// @Summary Convert MIDI to JSON
// @Description Upload a MIDI file and receive a JSON song document
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/midi2json [post]
func (s *server) handleMIDIToJSON(c *gin.Context) {
	s.handleConversion(c, converter.FormatMIDI, converter.FormatJSON)
}

// handleYAMLToMIDI godoc
// @Summary Convert YAML to MIDI
// @Description Upload a YAML song document and receive a MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "YAML document to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/yaml2midi [post]
func (s *server) handleYAMLToMIDI(c *gin.Context) {
	s.handleConversion(c, converter.FormatYAML, converter.FormatMIDI)
}

// handleJSONToMIDI godoc
// @Summary Convert JSON to MIDI
// @Description Upload a JSON song document and receive a MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "JSON document to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/json2midi [post]
func (s *server) handleJSONToMIDI(c *gin.Context) {
	s.handleConversion(c, converter.FormatJSON, converter.FormatMIDI)
}

// handlePianoRoll godoc
// @Summary Draw a piano-roll
// @Description Upload a MIDI file and receive a PNG piano-roll
// @Tags render
// @Accept multipart/form-data
// @Produce image/png
// @Param file formData file true "MIDI file to draw"
// @Param beat_width query number false "Pixels per quarter note"
// @Param key_height query number false "Pixels per key"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/pianoroll [post]
func (s *server) handlePianoRoll(c *gin.Context) {
	opts := s.roll
	for name, dst := range map[string]*float64{"beat_width": &opts.BeatWidth, "key_height": &opts.KeyHeight} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s %q", name, v)})
			return
		}
		*dst = f
	}

	data, _, ok := readUpload(c)
	if !ok {
		return
	}
	song, err := s.conv.Decode(data)
	if err != nil {
		s.decodeFailed(c, err)
		return
	}
	var buf bytes.Buffer
	if err := pianoroll.Draw(song, &buf, opts); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *server) handleConversion(c *gin.Context, from, to converter.Format) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := s.conv.Convert(data, from, to)
	if err != nil {
		s.decodeFailed(c, err)
		return
	}

	var contentType, outputExt string
	switch to {
	case converter.FormatMIDI:
		contentType, outputExt = "audio/midi", ".mid"
	case converter.FormatYAML:
		contentType, outputExt = "application/x-yaml", ".yaml"
	case converter.FormatJSON:
		contentType, outputExt = "application/json", ".json"
	default:
		contentType, outputExt = "application/octet-stream", ""
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName(filename, outputExt)))
	c.Data(http.StatusOK, contentType, result)
}

// readUpload returns the "file" form field. On failure it has already
// written the response.
func readUpload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}
	if len(data) > maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return nil, "", false
	}
	return data, header.Filename, true
}

// decodeFailed reports input the codec or document parser rejected.
func (s *server) decodeFailed(c *gin.Context, err error) {
	s.log.Warn("rejected upload", "path", c.FullPath(), "error", err)
	body := gin.H{"error": err.Error()}
	var se *smf.Error
	if errors.As(err, &se) {
		body["kind"] = se.Kind.Error()
		if se.Track >= 0 {
			body["track"] = se.Track
		}
		if se.Offset >= 0 {
			body["offset"] = se.Offset
		}
	}
	c.JSON(http.StatusUnprocessableEntity, body)
}

func outputName(filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "converted"
	}
	return base + ext
}
