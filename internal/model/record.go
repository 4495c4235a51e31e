package model

// TrackRecord is one track entry recovered from a decoded album script.
// Records are created once per decode pass and never modified.
type TrackRecord struct {
	// TrackNumber is the track field of the record.
	TrackNumber int

	// Name is the display name, HTML entities already decoded.
	Name string

	// Length is the raw length field, e.g. "2:31".
	Length string

	// File is the remote file URL the LinkID was taken from.
	File string

	// LinkID is the second-to-last path segment of File.
	LinkID string

	// SourceDomain is the host of File, empty if it could not be parsed.
	SourceDomain string
}

// FileEntry is an audio file listed on the album page.
type FileEntry struct {
	// RawFilename is the file name as linked from the page, fully percent-decoded.
	RawFilename string

	// Title is the link text of the file on the page, if any.
	Title string

	// Numbered reports whether the filename carries a track number.
	// Disc and Track are only meaningful when it does.
	Numbered bool

	// Disc is the parsed disc number; 1 when the filename has no disc part.
	Disc int

	// Track is the parsed track number.
	Track int
}

// Assignment pairs a page file with the track record resolved for it.
type Assignment struct {
	File   FileEntry
	Record TrackRecord

	// Strategy names the resolution strategy that produced the pairing.
	Strategy string
}
