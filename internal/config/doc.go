// Package config provides configuration management for khinsider-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON or TOML files
//   - Default configuration values and validation
//   - Conversion to the option types of other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads lossless files to ~/Music/KHInsider/{album}
//	// Two concurrent track downloads
//	// Fuzzy name matching at 0.8
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// The file format follows the extension: ".toml" files are TOML, anything
// else is JSON.
//
// # Saving Settings
//
//	settings.DownloadsPath = "/custom/path/{album}"
//	err := settings.Save("/path/to/config.json")
package config
