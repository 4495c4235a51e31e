package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("User-Agent")))
	})
	mux.HandleFunc("/file.flac", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		if r.Method == http.MethodHead {
			return
		}
		w.Write([]byte("0123456789"))
	})
	mux.HandleFunc("/short.flac", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		w.Write([]byte("0123"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetString(t *testing.T) {
	srv := newServer(t)

	got, err := NewClient(Options{}).GetString(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", got, DefaultUserAgent)
	}

	got, _ = NewClient(Options{UserAgent: "custom"}).GetString(context.Background(), srv.URL+"/page")
	if got != "custom" {
		t.Errorf("User-Agent = %q, want custom", got)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := newServer(t)

	_, err := NewClient(Options{}).Get(context.Background(), srv.URL+"/missing")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}

func TestClient_GetFileSize(t *testing.T) {
	srv := newServer(t)

	size, err := NewClient(Options{}).GetFileSize(context.Background(), srv.URL+"/file.flac")
	if err != nil {
		t.Fatalf("GetFileSize: %v", err)
	}
	if size != 10 {
		t.Errorf("size = %d, want 10", size)
	}
}

func TestClient_DownloadFile(t *testing.T) {
	srv := newServer(t)
	dest := filepath.Join(t.TempDir(), "file.flac")

	var last int64
	err := NewClient(Options{}).DownloadFile(context.Background(), srv.URL+"/file.flac", dest, func(written, total int64) {
		last = written
	})
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "0123456789" {
		t.Errorf("content = %q", data)
	}
	if last != 10 {
		t.Errorf("last progress = %d, want 10", last)
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestClient_DownloadFile_NotFound(t *testing.T) {
	srv := newServer(t)
	dest := filepath.Join(t.TempDir(), "missing.flac")

	if err := NewClient(Options{}).DownloadFile(context.Background(), srv.URL+"/missing.flac", dest, nil); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("file created for failed download")
	}
}

func TestClient_DownloadFile_ShortBody(t *testing.T) {
	srv := newServer(t)
	dest := filepath.Join(t.TempDir(), "short.flac")

	if err := NewClient(Options{}).DownloadFile(context.Background(), srv.URL+"/short.flac", dest, nil); err == nil {
		t.Fatal("expected error for truncated body")
	}
	for _, p := range []string{dest, dest + ".part"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s left behind", filepath.Base(p))
		}
	}
}

func TestProxyFunc(t *testing.T) {
	tests := []struct {
		proxy string
		isNil bool
	}{
		{"", true},
		{"none", true},
		{"system", false},
		{"http://127.0.0.1:8080", false},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.proxy, func(t *testing.T) {
			if got := proxyFunc(tt.proxy); (got == nil) != tt.isNil {
				t.Errorf("proxyFunc(%q) nil = %v, want %v", tt.proxy, got == nil, tt.isNil)
			}
		})
	}
}
