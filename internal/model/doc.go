// Package model defines the core data structures used throughout
// the khinsider-downloader application.
//
// # Resolution records
//
// TrackRecord, FileEntry and Assignment describe one resolution run: the
// records decoded from the page script, the files listed on the page, and
// the 1:1 pairing between them.
//
// # Album
//
// Album represents an album page with resolved tracks and computed file paths:
//
//	album := model.NewAlbum("album-id", "Title", pageURL, artworkURL, pathConfig)
//	fmt.Println(album.Path)        // Where to save the album
//	fmt.Println(album.ArtworkPath) // Where to save cover art
//
// # Track
//
// Track represents a single downloadable file within an album:
//
//	track := model.NewTrack(album, 1, 1, "Song Title", 180.5, "01 Song Title.flac", url, linkID)
//	fmt.Println(track.Path) // Full path where track will be saved
//
// # Path Configuration
//
// PathConfig controls how album paths are computed using placeholders:
//
//	cfg := &model.PathConfig{
//	    DownloadsPath:          "/music/{album}",
//	    CoverArtFileNameFormat: "cover",
//	    PlaylistFileNameFormat: "{album}",
//	    PlaylistFormat:         model.PlaylistFormatM3U,
//	}
//
// Available placeholders: {album}, {album_id}
package model
