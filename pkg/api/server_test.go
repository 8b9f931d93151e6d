package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/james-see/miid/pkg/smf"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testMIDI(t *testing.T) []byte {
	t.Helper()
	song := smf.New()
	song.Division = 96
	song.TimeTrack().Events = []smf.Event{smf.Tempo(0, 500000)}
	lead := song.AddTrack("Lead", 0)
	lead.Events = []smf.Event{
		smf.ProgramChange(0, 80),
		smf.NoteOn(0, 60, 100),
		smf.NoteOff(96, 60, 0),
	}
	song.UpdateEndOfSong()
	data, err := smf.Marshal(song)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return data
}

func upload(t *testing.T, path, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	NewRouter(Options{}).ServeHTTP(w, req)
	return w
}

func get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	NewRouter(Options{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not JSON: %v: %s", err, w.Body.String())
	}
	return m
}

func TestHealth(t *testing.T) {
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := get(path)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, w.Code)
		}
		if got := decodeBody(t, w)["status"]; got != "healthy" {
			t.Errorf("GET %s status = %v, want healthy", path, got)
		}
	}
}

func TestFormats(t *testing.T) {
	w := get("/api/v1/formats")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/formats = %d, want 200", w.Code)
	}
	m := decodeBody(t, w)
	if got := len(m["formats"].([]any)); got != 3 {
		t.Errorf("formats = %d entries, want 3", got)
	}
	if got := len(m["conversions"].([]any)); got != 7 {
		t.Errorf("conversions = %d entries, want 7", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	NewRouter(Options{}).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/inspect", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestInspect(t *testing.T) {
	w := upload(t, "/api/v1/inspect", "song.mid", testMIDI(t))
	if w.Code != http.StatusOK {
		t.Fatalf("inspect = %d, want 200: %s", w.Code, w.Body.String())
	}
	m := decodeBody(t, w)
	if got := m["division"]; got != float64(96) {
		t.Errorf("division = %v, want 96", got)
	}
	tracks := m["tracks"].([]any)
	if len(tracks) != 2 {
		t.Fatalf("tracks = %d, want 2", len(tracks))
	}
	lead := tracks[1].(map[string]any)
	if lead["name"] != "Lead" || lead["channel"] != "1" {
		t.Errorf("track 1 = %v, want Lead on channel 1", lead)
	}
}

func TestInspectErrors(t *testing.T) {
	w := upload(t, "/api/v1/inspect", "bad.mid", []byte("RIFF0000"))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("inspect = %d, want 422", w.Code)
	}
	if got := decodeBody(t, w)["kind"]; got != smf.ErrBadMagic.Error() {
		t.Errorf("kind = %v, want %q", got, smf.ErrBadMagic.Error())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inspect", strings.NewReader(""))
	rec := httptest.NewRecorder()
	NewRouter(Options{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inspect without file = %d, want 400", rec.Code)
	}
}

func TestRoundTrip(t *testing.T) {
	data := testMIDI(t)
	w := upload(t, "/api/v1/roundtrip", "song.mid", data)
	if w.Code != http.StatusOK {
		t.Fatalf("roundtrip = %d, want 200: %s", w.Code, w.Body.String())
	}
	m := decodeBody(t, w)
	if m["identical"] != true {
		t.Errorf("identical = %v, want true", m["identical"])
	}
	if m["input_size"] != float64(len(data)) {
		t.Errorf("input_size = %v, want %d", m["input_size"], len(data))
	}
}

func TestConvert(t *testing.T) {
	data := testMIDI(t)

	w := upload(t, "/api/v1/convert/midi2yaml", "song.mid", data)
	if w.Code != http.StatusOK {
		t.Fatalf("midi2yaml = %d, want 200: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=song.yaml" {
		t.Errorf("Content-Disposition = %q", got)
	}
	yamlDoc := w.Body.Bytes()

	w = upload(t, "/api/v1/convert/yaml2midi", "song.yaml", yamlDoc)
	if w.Code != http.StatusOK {
		t.Fatalf("yaml2midi = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !bytes.Equal(w.Body.Bytes(), data) {
		t.Error("yaml2midi did not reproduce the original file")
	}

	w = upload(t, "/api/v1/convert/midi2json", "song.mid", data)
	if w.Code != http.StatusOK {
		t.Fatalf("midi2json = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	w = upload(t, "/api/v1/convert/json2midi", "song.json", w.Body.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("json2midi = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !bytes.Equal(w.Body.Bytes(), data) {
		t.Error("json2midi did not reproduce the original file")
	}

	w = upload(t, "/api/v1/convert/json2midi", "song.json", []byte(`{"division": 0}`))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("json2midi with bad document = %d, want 422", w.Code)
	}
}

func TestPianoRoll(t *testing.T) {
	w := upload(t, "/api/v1/pianoroll?beat_width=10&key_height=2", "song.mid", testMIDI(t))
	if w.Code != http.StatusOK {
		t.Fatalf("pianoroll = %d, want 200: %s", w.Code, w.Body.String())
	}
	if _, err := png.Decode(w.Body); err != nil {
		t.Errorf("png.Decode() error = %v", err)
	}

	w = upload(t, "/api/v1/pianoroll?beat_width=wide", "song.mid", testMIDI(t))
	if w.Code != http.StatusBadRequest {
		t.Errorf("pianoroll with bad beat_width = %d, want 400", w.Code)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		filename, ext, want string
	}{
		{"song.mid", ".yaml", "song.yaml"},
		{"dir/song.midi", ".json", "song.json"},
		{"noext", ".mid", "noext.mid"},
		{"", ".mid", "converted.mid"},
	}
	for _, tt := range tests {
		if got := outputName(tt.filename, tt.ext); got != tt.want {
			t.Errorf("outputName(%q, %q) = %q, want %q", tt.filename, tt.ext, got, tt.want)
		}
	}
}
