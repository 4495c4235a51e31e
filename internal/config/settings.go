package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/khinsider-downloader/internal/http"
	"github.com/handiism/khinsider-downloader/internal/khinsider"
	"github.com/handiism/khinsider-downloader/internal/link"
	"github.com/handiism/khinsider-downloader/internal/model"
)

// Audio formats.
const (
	FormatFLAC = "flac"
	FormatMP3  = "mp3"
)

// Settings holds all configuration options.
type Settings struct {
	// Source settings
	BaseURL        string   `json:"base_url" toml:"base_url"`
	AllowedDomains []string `json:"allowed_domains" toml:"allowed_domains"`
	Format         string   `json:"format" toml:"format"` // flac, mp3
	FuzzyCutoff    float64  `json:"fuzzy_cutoff" toml:"fuzzy_cutoff"`
	UserAgent      string   `json:"user_agent" toml:"user_agent"`
	RequestTimeout int      `json:"request_timeout" toml:"request_timeout"` // seconds

	// Download settings
	DownloadsPath               string  `json:"downloads_path" toml:"downloads_path"`
	MaxConcurrentAlbumsDownload int     `json:"max_concurrent_albums" toml:"max_concurrent_albums"`
	MaxConcurrentTracksDownload int     `json:"max_concurrent_tracks" toml:"max_concurrent_tracks"`
	DownloadMaxRetries          int     `json:"download_max_retries" toml:"download_max_retries"`
	DownloadRetryCooldown       float64 `json:"download_retry_cooldown" toml:"download_retry_cooldown"`
	DownloadRetryExponent       float64 `json:"download_retry_exponent" toml:"download_retry_exponent"`
	AllowedFileSizeDifference   float64 `json:"allowed_file_size_difference" toml:"allowed_file_size_difference"`
	SkipExisting                bool    `json:"skip_existing" toml:"skip_existing"`
	FollowListingPages          bool    `json:"follow_listing_pages" toml:"follow_listing_pages"`

	// File naming
	CoverArtFileNameFormat string `json:"cover_art_file_name_format" toml:"cover_art_file_name_format"`
	PlaylistFileNameFormat string `json:"playlist_file_name_format" toml:"playlist_file_name_format"`

	// Cover art settings
	SaveCoverArtInFolder    bool `json:"save_cover_art_in_folder" toml:"save_cover_art_in_folder"`
	SaveCoverArtInTags      bool `json:"save_cover_art_in_tags" toml:"save_cover_art_in_tags"`
	CoverArtInFolderResize  bool `json:"cover_art_in_folder_resize" toml:"cover_art_in_folder_resize"`
	CoverArtInFolderMaxSize int  `json:"cover_art_in_folder_max_size" toml:"cover_art_in_folder_max_size"`
	CoverArtInTagsResize    bool `json:"cover_art_in_tags_resize" toml:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize   int  `json:"cover_art_in_tags_max_size" toml:"cover_art_in_tags_max_size"`
	ConvertCoverArtToJPG    bool `json:"convert_cover_art_to_jpg" toml:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" toml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended" toml:"m3u_extended"`

	// Tag settings, applied to mp3 downloads only
	ModifyTags bool `json:"modify_tags" toml:"modify_tags"`

	// Logging
	LogLevel  string `json:"log_level" toml:"log_level"`   // debug, info, warn, error
	LogFormat string `json:"log_format" toml:"log_format"` // console, json

	// Proxy settings
	ProxyType    string `json:"proxy_type" toml:"proxy_type"` // none, system, manual
	ProxyAddress string `json:"proxy_address" toml:"proxy_address"`
	ProxyPort    int    `json:"proxy_port" toml:"proxy_port"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		BaseURL:        khinsider.DefaultBaseURL,
		AllowedDomains: append([]string(nil), khinsider.DefaultAllowedDomains...),
		Format:         FormatFLAC,
		FuzzyCutoff:    0.8,
		UserAgent:      http.DefaultUserAgent,
		RequestTimeout: 30,

		DownloadsPath:               filepath.Join(homeDir, "Music", "KHInsider", "{album}"),
		MaxConcurrentAlbumsDownload: 1,
		MaxConcurrentTracksDownload: 2,
		DownloadMaxRetries:          7,
		DownloadRetryCooldown:       0.2,
		DownloadRetryExponent:       4.0,
		AllowedFileSizeDifference:   0.05,
		SkipExisting:                true,
		FollowListingPages:          false,

		CoverArtFileNameFormat: "cover",
		PlaylistFileNameFormat: "{album}",

		SaveCoverArtInFolder:    true,
		SaveCoverArtInTags:      true,
		CoverArtInFolderResize:  false,
		CoverArtInFolderMaxSize: 1000,
		CoverArtInTagsResize:    true,
		CoverArtInTagsMaxSize:   1000,
		ConvertCoverArtToJPG:    true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,

		LogLevel:  "info",
		LogFormat: "console",

		ProxyType: "system",
	}
}

// Load reads settings from a JSON or TOML file, chosen by the file
// extension. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	settings := DefaultSettings()
	if isTOML(path) {
		err = toml.NewDecoder(bytes.NewReader(data)).Decode(settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON or TOML file, chosen by the file extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports settings that cannot be used.
func (s *Settings) Validate() error {
	var errs []error

	if s.FuzzyCutoff < 0 || s.FuzzyCutoff > 1 {
		errs = append(errs, fmt.Errorf("fuzzy_cutoff must be between 0 and 1, got %v", s.FuzzyCutoff))
	}
	if s.MaxConcurrentAlbumsDownload < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_albums must be positive, got %d", s.MaxConcurrentAlbumsDownload))
	}
	if s.MaxConcurrentTracksDownload < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_tracks must be positive, got %d", s.MaxConcurrentTracksDownload))
	}
	if s.DownloadMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("download_max_retries must not be negative, got %d", s.DownloadMaxRetries))
	}
	switch strings.ToLower(s.Format) {
	case FormatFLAC, FormatMP3:
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", s.Format))
	}
	if strings.TrimSpace(s.DownloadsPath) == "" {
		errs = append(errs, errors.New("downloads_path must not be empty"))
	}

	return errors.Join(errs...)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		DownloadsPath:          s.DownloadsPath,
		CoverArtFileNameFormat: s.CoverArtFileNameFormat,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         model.ParsePlaylistFormat(s.PlaylistFormat),
	}
}

// ToParserOptions converts settings to the album page parser options.
func (s *Settings) ToParserOptions() khinsider.Options {
	ext := link.LosslessExtension
	if strings.EqualFold(s.Format, FormatMP3) {
		ext = ""
	}
	return khinsider.Options{
		BaseURL:        strings.TrimRight(s.BaseURL, "/"),
		AllowedDomains: s.AllowedDomains,
		Extension:      ext,
		FuzzyCutoff:    s.FuzzyCutoff,
	}
}

// ToHTTPOptions converts settings to HTTP client options.
func (s *Settings) ToHTTPOptions() http.Options {
	proxy := s.ProxyType
	if proxy == "manual" {
		proxy = fmt.Sprintf("http://%s:%d", s.ProxyAddress, s.ProxyPort)
	}
	return http.Options{
		UserAgent: s.UserAgent,
		Timeout:   time.Duration(s.RequestTimeout) * time.Second,
		ProxyURL:  proxy,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
