package match

import "github.com/handiism/khinsider-downloader/internal/model"

// DefaultCutoff is the minimum similarity ratio accepted by FuzzyName.
const DefaultCutoff = 0.8

// Result is the outcome of one resolution run. Every input file ends up in
// exactly one of Assignments or Unmatched, in input order.
type Result struct {
	Assignments []model.Assignment
	Unmatched   []model.FileEntry

	// Leftover holds the records no file was matched to.
	Leftover []model.TrackRecord
}

// DefaultStrategies returns the resolution chain in the order it is tried:
// absolute track number, exact name, then fuzzy name.
func DefaultStrategies(files []model.FileEntry, cutoff float64) []Strategy {
	return []Strategy{
		AbsoluteTrack(files),
		ExactName(),
		FuzzyName(cutoff),
	}
}

// Resolve assigns records to files with the default strategy chain.
func Resolve(files []model.FileEntry, records []model.TrackRecord, cutoff float64) Result {
	return ResolveWith(files, records, DefaultStrategies(files, cutoff))
}

// ResolveWith walks files in order and tries each strategy until one returns
// a record. The chosen record is taken from the pool so no record, and so no
// link ID, is assigned twice.
func ResolveWith(files []model.FileEntry, records []model.TrackRecord, strategies []Strategy) Result {
	pool := NewPool(records)
	var res Result

	for _, f := range files {
		assigned := false
		for _, s := range strategies {
			if pool.Len() == 0 {
				break
			}
			i, ok := s.Find(f, pool)
			if !ok {
				continue
			}
			r, ok := pool.Take(i)
			if !ok {
				continue
			}
			res.Assignments = append(res.Assignments, model.Assignment{
				File:     f,
				Record:   r,
				Strategy: s.Name,
			})
			assigned = true
			break
		}
		if !assigned {
			res.Unmatched = append(res.Unmatched, f)
		}
	}

	res.Leftover = pool.Remaining()
	return res
}
