//go:build integration

package e2e_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamwoolhether/optidash"
)

// -------------------------------------------------------------------------
// Mock remote service
// -------------------------------------------------------------------------

// newService stands in for the remote image-processing API: an upload
// endpoint accepting multipart posts and a fetch endpoint accepting
// JSON, each able to answer in JSON or binary depending on the
// request's binary header. Fetch URLs containing "reject" simulate a
// remote-reported failure.
func newService(t *testing.T) string {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /1.0/upload", uploadHandler)
	mux.HandleFunc("POST /1.0/fetch", fetchHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv.URL
}

func uploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	source, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var ops map[string]any
	if err := json.Unmarshal([]byte(r.FormValue("data")), &ops); err != nil {
		http.Error(w, "data part is not JSON", http.StatusBadRequest)
		return
	}

	respond(w, r, source)
}

func fetchHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	srcURL, _ := body["url"].(string)
	if strings.Contains(srcURL, "reject") {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":false,"message":"bad input"}`)
		return
	}

	respond(w, r, []byte("fetched image bytes"))
}

// respond answers in binary when the client asked for it, JSON otherwise.
func respond(w http.ResponseWriter, r *http.Request, image []byte) {
	if r.Header.Get("X-Optidash-Binary") == "1" {
		w.Header().Set("X-Optidash-Meta", `{"success":true}`)
		w.Write(image)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, `{"success":true,"output":{"url":"https://cdn.example.com/out.webp"}}`)
}

func newClient(t *testing.T, serviceURL string) *optidash.Client {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	c, err := optidash.New("e2e-key",
		optidash.WithEndpoint(serviceURL),
		optidash.WithLogger(log),
		optidash.WithUserAgent("optidash-e2e/1.0"),
	)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	return c
}

// -------------------------------------------------------------------------
// Round trips
// -------------------------------------------------------------------------

func TestE2E_FetchToJSON(t *testing.T) {
	c := newClient(t, newService(t))

	meta, err := c.Fetch("https://example.com/input.jpg").
		Resize(optidash.Resize{Width: 320, Height: 240, Mode: "fit"}).
		Output(optidash.Output{Format: "webp", Quality: 80}).
		ToJSON(t.Context())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	output, ok := meta["output"].(map[string]any)
	if !ok || output["url"] != "https://cdn.example.com/out.webp" {
		t.Errorf("unexpected meta: %v", meta)
	}
}

func TestE2E_RemoteFailureKeepsMeta(t *testing.T) {
	c := newClient(t, newService(t))

	meta, err := c.Fetch("https://example.com/reject.jpg").ToJSON(t.Context())
	if err == nil || err.Error() != "bad input" {
		t.Fatalf("expected remote failure with service message, got: %v", err)
	}
	if !errors.Is(err, optidash.ErrRemoteFailure) {
		t.Errorf("expected ErrRemoteFailure, got: %v", err)
	}
	if meta.Message() != "bad input" {
		t.Errorf("expected meta attached on failure, got %v", meta)
	}
}

func TestE2E_UploadToFile(t *testing.T) {
	c := newClient(t, newService(t))

	srcPath := filepath.Join(t.TempDir(), "input.jpg")
	source := []byte("raw input image")
	if err := os.WriteFile(srcPath, source, 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "output.jpg")

	meta, err := c.Upload(srcPath).
		Optimize(optidash.Optimize{Compression: "medium"}).
		ToFile(t.Context(), dest)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !meta.OK() {
		t.Errorf("expected success meta, got %v", meta)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if !bytes.Equal(got, source) {
		t.Errorf("destination mismatch: got %q", got)
	}
}

func TestE2E_BufferUploadToBuffer(t *testing.T) {
	c := newClient(t, newService(t))

	source := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	meta, body, err := c.UploadBuffer(source).
		Flip(optidash.Flip{Horizontal: true}).
		ToBuffer(t.Context())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !meta.OK() {
		t.Errorf("expected success meta, got %v", meta)
	}
	if !bytes.Equal(body, source) {
		t.Errorf("expected echoed bytes, got %v", body)
	}
}

func TestE2E_AsyncDispatches(t *testing.T) {
	c := newClient(t, newService(t))

	first := c.Fetch("https://example.com/a.jpg").ToJSONAsync(t.Context())
	second := c.Fetch("https://example.com/b.jpg").ToBufferAsync(t.Context())

	if err := first.Err(); err != nil {
		t.Errorf("first dispatch failed: %v", err)
	}
	if err := second.Err(); err != nil {
		t.Errorf("second dispatch failed: %v", err)
	}
	if len(second.Body()) == 0 {
		t.Error("expected binary body from second dispatch")
	}
}

func TestE2E_ConfigurationErrorsNeverReachService(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits++ })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL)

	if _, err := c.Upload("a.jpg").Fetch("https://x/b.jpg").ToJSON(t.Context()); !errors.Is(err, optidash.ErrInputConflict) {
		t.Errorf("expected ErrInputConflict, got: %v", err)
	}
	if _, _, err := c.Fetch("https://x/a.jpg").Webhook(optidash.Webhook{URL: "https://x/hook"}).ToBuffer(t.Context()); !errors.Is(err, optidash.ErrBinaryConflict) {
		t.Errorf("expected ErrBinaryConflict, got: %v", err)
	}

	if hits != 0 {
		t.Errorf("expected no service contact, saw %d requests", hits)
	}
}
