package images_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campus-notice-collector/internal/images"
	"github.com/rs/zerolog"
)

func newImageServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/ok.png":
			w.Write([]byte("png-bytes"))
		case "/slow.png":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve_DownloadsOnceThenHitsCache(t *testing.T) {
	var hits int32
	srv := newImageServer(t, &hits)
	dir := t.TempDir()
	r := images.NewResolver(dir, "img", time.Second, zerolog.Nop())

	url := srv.URL + "/ok.png"
	first := r.Resolve(context.Background(), url)
	second := r.Resolve(context.Background(), url)

	want := "img/" + images.Identifier(url)
	if first != want || second != want {
		t.Errorf("Expected %s twice, got %s and %s", want, first, second)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Expected 1 network fetch, got %d", hits)
	}

	data, err := os.ReadFile(filepath.Join(dir, images.Identifier(url)))
	if err != nil {
		t.Fatalf("Expected cached file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("Unexpected cached content %q", data)
	}
}

func TestResolve_FailuresReturnEmpty(t *testing.T) {
	var hits int32
	srv := newImageServer(t, &hits)
	r := images.NewResolver(t.TempDir(), "img", 50*time.Millisecond, zerolog.Nop())

	tests := []struct {
		name string
		url  string
	}{
		{"not found", srv.URL + "/missing.png"},
		{"timeout", srv.URL + "/slow.png"},
		{"unreachable", "http://127.0.0.1:1/none.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(context.Background(), tt.url); got != "" {
				t.Errorf("Expected empty identifier, got %s", got)
			}
		})
	}
}

func TestResolve_FailureLogOmitsURL(t *testing.T) {
	var hits int32
	srv := newImageServer(t, &hits)

	var buf bytes.Buffer
	r := images.NewResolver(t.TempDir(), "img", 50*time.Millisecond, zerolog.New(&buf))

	urls := []string{
		srv.URL + "/file/bot123:secret-token/photos/file_1.jpg",
		"http://127.0.0.1:1/file/bot123:secret-token/photos/file_2.jpg",
	}
	for _, u := range urls {
		if got := r.Resolve(context.Background(), u); got != "" {
			t.Errorf("Expected empty identifier, got %s", got)
		}
	}

	out := buf.String()
	if !strings.Contains(out, "Failed to fetch image") {
		t.Fatalf("Expected failure to be logged, got %q", out)
	}
	if strings.Contains(out, "secret-token") {
		t.Errorf("Expected log without the URL, got %q", out)
	}
	if !strings.Contains(out, images.Identifier(urls[0])) {
		t.Errorf("Expected log to name the image identifier, got %q", out)
	}
}

func TestIdentifier_DecodesAmpersands(t *testing.T) {
	a := images.Identifier("http://x/y?a=1&amp;b=2")
	b := images.Identifier("http://x/y?a=1&b=2")

	if a != b {
		t.Errorf("Expected identical identifiers, got %s and %s", a, b)
	}
	if filepath.Ext(a) != ".jpg" || len(a) != 36 {
		t.Errorf("Unexpected identifier format %s", a)
	}
}

func TestResolveAll_DedupesAndDropsFailures(t *testing.T) {
	var hits int32
	srv := newImageServer(t, &hits)
	r := images.NewResolver(t.TempDir(), "img", time.Second, zerolog.Nop())

	ok := srv.URL + "/ok.png"
	got := r.ResolveAll(context.Background(), []string{ok, srv.URL + "/missing.png", ok})

	if len(got) != 1 || got[0] != "img/"+images.Identifier(ok) {
		t.Errorf("Expected a single resolved image, got %v", got)
	}
}
