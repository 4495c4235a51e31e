package match

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"

	"github.com/handiism/khinsider-downloader/internal/model"
)

// Strategy names.
const (
	StrategyAbsoluteTrack = "absolute-track"
	StrategyExactName     = "exact-name"
	StrategyFuzzyName     = "fuzzy-name"
)

// Strategy is one step of the resolution chain. Find returns the pool index
// of the record to assign to the file, or false when it has no answer.
// Find must not modify the pool.
type Strategy struct {
	Name string
	Find func(file model.FileEntry, pool *Pool) (int, bool)
}

// AbsoluteTrack matches a numbered file against the record whose track
// number equals the file's position counted across all discs. The disc
// sizes are taken from the numbered entries in files.
//
// A match is only made when exactly one available record carries that
// number.
func AbsoluteTrack(files []model.FileEntry) Strategy {
	offsets := DiscOffsets(files)

	return Strategy{
		Name: StrategyAbsoluteTrack,
		Find: func(file model.FileEntry, pool *Pool) (int, bool) {
			if !file.Numbered {
				return 0, false
			}
			want := offsets[file.Disc] + file.Track

			found, count := -1, 0
			pool.Each(func(i int, r model.TrackRecord) bool {
				if r.TrackNumber == want {
					if found < 0 {
						found = i
					}
					count++
				}
				return count < 2
			})
			if count != 1 {
				return 0, false
			}
			return found, true
		},
	}
}

// DiscOffsets returns, for every disc seen in files, the number of numbered
// files on all lower-numbered discs.
func DiscOffsets(files []model.FileEntry) map[int]int {
	sizes := make(map[int]int)
	for _, f := range files {
		if f.Numbered {
			sizes[f.Disc]++
		}
	}

	discs := make([]int, 0, len(sizes))
	for d := range sizes {
		discs = append(discs, d)
	}
	sort.Ints(discs)

	offsets := make(map[int]int, len(discs))
	total := 0
	for _, d := range discs {
		offsets[d] = total
		total += sizes[d]
	}
	return offsets
}

// AbsoluteTrackNumber returns the file's track position across all discs.
func AbsoluteTrackNumber(file model.FileEntry, files []model.FileEntry) (int, bool) {
	if !file.Numbered {
		return 0, false
	}
	return DiscOffsets(files)[file.Disc] + file.Track, true
}

// ExactName matches the first available record whose name equals the file's
// page title or its cleaned filename.
func ExactName() Strategy {
	return Strategy{
		Name: StrategyExactName,
		Find: func(file model.FileEntry, pool *Pool) (int, bool) {
			names := []string{CleanName(file.RawFilename)}
			if file.Title != "" {
				names = append(names, file.Title)
			}

			found := -1
			pool.Each(func(i int, r model.TrackRecord) bool {
				for _, n := range names {
					if r.Name == n {
						found = i
						return false
					}
				}
				return true
			})
			return found, found >= 0
		},
	}
}

// FuzzyName compares the cleaned filename with every available record name
// and picks the best similarity ratio, provided it reaches cutoff. Equal
// scores keep the earlier record.
func FuzzyName(cutoff float64) Strategy {
	return Strategy{
		Name: StrategyFuzzyName,
		Find: func(file model.FileEntry, pool *Pool) (int, bool) {
			target := CleanName(file.RawFilename)
			if target == "" {
				return 0, false
			}
			m := difflib.NewMatcher(nil, chars(target))

			best, bestScore := -1, -1.0
			pool.Each(func(i int, r model.TrackRecord) bool {
				m.SetSeq1(chars(r.Name))
				if score := m.Ratio(); score >= cutoff && score > bestScore {
					best, bestScore = i, score
				}
				return true
			})
			return best, best >= 0
		},
	}
}

// Similarity returns the matching-blocks ratio between two names after
// normalisation, in [0, 1].
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// chars splits s into NFC-normalised characters for the sequence matcher.
func chars(s string) []string {
	s = norm.NFC.String(strings.TrimSpace(s))
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
