// Package audio post-processes downloaded albums.
//
// Tagger writes ID3v2 frames (album, title, track and disc numbers, genre,
// source URL, front cover) into MP3 downloads. Other formats are rejected by
// CanTag and left alone.
//
// PlaylistCreator renders an album's track list as M3U, PLS, WPL or ZPL.
// Paths in the playlist are relative to the album folder.
package audio
