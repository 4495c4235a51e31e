package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/handiism/khinsider-downloader/internal/model"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Format != FormatFLAC || s.FuzzyCutoff != 0.8 || s.MaxConcurrentTracksDownload != 2 {
		t.Errorf("defaults not applied: %+v", s)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			s := DefaultSettings()
			s.DownloadsPath = "/music/{album_id}"
			s.Format = FormatMP3
			s.FuzzyCutoff = 0.65
			s.AllowedDomains = []string{"vgmsite.com"}

			if err := s.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.DownloadsPath != s.DownloadsPath || got.Format != s.Format || got.FuzzyCutoff != s.FuzzyCutoff {
				t.Errorf("Load() = %+v", got)
			}
			if len(got.AllowedDomains) != 1 || got.AllowedDomains[0] != "vgmsite.com" {
				t.Errorf("AllowedDomains = %v", got.AllowedDomains)
			}
		})
	}
}

func TestLoad_PartialTOMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "downloads_path = \"/srv/music/{album}\"\nmax_concurrent_tracks = 4\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DownloadsPath != "/srv/music/{album}" || s.MaxConcurrentTracksDownload != 4 {
		t.Errorf("file values not applied: %+v", s)
	}
	if s.BaseURL == "" || s.DownloadMaxRetries != 7 {
		t.Errorf("defaults lost: %+v", s)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad.json":    `{"fuzzy_cutoff": 1.5}`,
		"format.json": `{"format": "ogg"}`,
		"syntax.toml": `downloads_path = `,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	s := DefaultSettings()
	s.FuzzyCutoff = -1
	s.MaxConcurrentTracksDownload = 0

	err := s.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"fuzzy_cutoff", "max_concurrent_tracks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestToPathConfig(t *testing.T) {
	s := DefaultSettings()
	s.PlaylistFormat = "pls"

	cfg := s.ToPathConfig()
	if cfg.PlaylistFormat != model.PlaylistFormatPLS || cfg.DownloadsPath != s.DownloadsPath {
		t.Errorf("ToPathConfig() = %+v", cfg)
	}
}

func TestToParserOptions(t *testing.T) {
	s := DefaultSettings()
	s.BaseURL = "https://example.org/soundtracks/"

	opts := s.ToParserOptions()
	if opts.Extension != ".flac" || opts.BaseURL != "https://example.org/soundtracks" {
		t.Errorf("flac options = %+v", opts)
	}

	s.Format = FormatMP3
	if opts := s.ToParserOptions(); opts.Extension != "" {
		t.Errorf("mp3 Extension = %q, want empty", opts.Extension)
	}
}

func TestToHTTPOptions(t *testing.T) {
	s := DefaultSettings()
	s.ProxyType = "manual"
	s.ProxyAddress = "127.0.0.1"
	s.ProxyPort = 8080

	opts := s.ToHTTPOptions()
	if opts.ProxyURL != "http://127.0.0.1:8080" || opts.Timeout != 30*time.Second || opts.UserAgent != "KHInsider/1.0" {
		t.Errorf("ToHTTPOptions() = %+v", opts)
	}
}
