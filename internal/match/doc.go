// Package match pairs the audio files listed on an album page with the track
// records recovered from the page's script.
//
// The page and the script number tracks independently, so resolution runs a
// chain of strategies per file and stops at the first one that answers:
//
//  1. AbsoluteTrack: the file's track number counted across all discs
//     ("2-01" on an album whose first disc has 3 tracks is track 4) must
//     equal exactly one record's track number.
//  2. ExactName: a record name equals the page title or the cleaned filename.
//  3. FuzzyName: the best matching-blocks ratio against the cleaned filename,
//     if it reaches the cutoff.
//
// Each assigned record is taken from a Pool and never offered again. Given
// the same inputs the result is always the same.
package match
