package imagecheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIsImageAcceptsImageContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewValidator(Options{HTTPClient: srv.Client()})
	if !v.IsImage(context.Background(), srv.URL+"/w.png") {
		t.Fatal("expected image URL to validate")
	}
}

func TestIsImageRejections(t *testing.T) {
	htmlSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer htmlSrv.Close()

	notFoundSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFoundSrv.Close()

	v := NewValidator(Options{HTTPClient: htmlSrv.Client()})

	tests := []struct {
		name string
		url  string
	}{
		{name: "non-image content type", url: htmlSrv.URL},
		{name: "non-200 status", url: notFoundSrv.URL},
		{name: "missing scheme", url: "cdn.example.com/w.png"},
		{name: "ftp scheme", url: "ftp://cdn.example.com/w.png"},
		{name: "empty", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v.IsImage(context.Background(), tt.url) {
				t.Fatalf("expected %q to be rejected", tt.url)
			}
		})
	}
}

func TestIsImageTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	v := NewValidator(Options{HTTPClient: srv.Client(), Timeout: 50 * time.Millisecond})

	start := time.Now()
	if v.IsImage(context.Background(), srv.URL) {
		t.Fatal("expected timeout to invalidate URL")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("validation took too long: %s", elapsed)
	}
}
