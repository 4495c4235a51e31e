package match

import "github.com/handiism/khinsider-downloader/internal/model"

// Pool is the working set of candidate records for one resolution run.
// Taken records stay in place and are skipped by every lookup. Taking a
// record also retires every other record carrying the same link ID, so a
// link ID is handed out at most once.
type Pool struct {
	records []model.TrackRecord
	used    []bool
	free    int
}

// NewPool copies records into a fresh pool with every record available.
func NewPool(records []model.TrackRecord) *Pool {
	owned := make([]model.TrackRecord, len(records))
	copy(owned, records)
	return &Pool{
		records: owned,
		used:    make([]bool, len(owned)),
		free:    len(owned),
	}
}

// Len returns the number of records still available.
func (p *Pool) Len() int {
	return p.free
}

// Record returns the record at index i, taken or not.
func (p *Pool) Record(i int) model.TrackRecord {
	return p.records[i]
}

// Available reports whether the record at index i can still be assigned.
func (p *Pool) Available(i int) bool {
	return i >= 0 && i < len(p.records) && !p.used[i]
}

// Take marks the record at index i as used and returns it.
// It returns false if i is out of range or already taken.
func (p *Pool) Take(i int) (model.TrackRecord, bool) {
	if !p.Available(i) {
		return model.TrackRecord{}, false
	}
	r := p.records[i]
	p.retire(i)
	if r.LinkID != "" {
		for j := range p.records {
			if !p.used[j] && p.records[j].LinkID == r.LinkID {
				p.retire(j)
			}
		}
	}
	return r, true
}

func (p *Pool) retire(i int) {
	p.used[i] = true
	p.free--
}

// Each calls fn for every available record in extraction order until fn
// returns false.
func (p *Pool) Each(fn func(i int, r model.TrackRecord) bool) {
	for i, r := range p.records {
		if p.used[i] {
			continue
		}
		if !fn(i, r) {
			return
		}
	}
}

// Remaining returns the available records in extraction order.
func (p *Pool) Remaining() []model.TrackRecord {
	out := make([]model.TrackRecord, 0, p.free)
	p.Each(func(_ int, r model.TrackRecord) bool {
		out = append(out, r)
		return true
	})
	return out
}
