package match

import (
	"fmt"
	"testing"

	"github.com/handiism/khinsider-downloader/internal/model"
)

func record(track int, name, linkID string) model.TrackRecord {
	return model.TrackRecord{TrackNumber: track, Name: name, LinkID: linkID}
}

func TestParseFileEntry(t *testing.T) {
	tests := []struct {
		input    string
		numbered bool
		disc     int
		track    int
	}{
		{"01. Main Theme.mp3", true, 1, 1},
		{"2-05 Boss Battle.mp3", true, 2, 5},
		{"2-05%20Boss%20Battle.mp3", true, 2, 5},
		{"13 Ending.mp3", true, 1, 13},
		{"Main Theme.mp3", false, 0, 0},
		{"Theme 2.mp3", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFileEntry(tt.input, "")
			if got.Numbered != tt.numbered || got.Disc != tt.disc || got.Track != tt.track {
				t.Errorf("ParseFileEntry(%q) = %+v, want numbered=%v disc=%d track=%d",
					tt.input, got, tt.numbered, tt.disc, tt.track)
			}
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"01. Main Theme.mp3":   "Main Theme",
		"2-05 Boss Battle.mp3": "Boss Battle",
		"Main Theme.flac":      "Main Theme",
		"03 - Town.mp3":        "- Town",
		"Intro":                "Intro",
	}
	for input, want := range tests {
		if got := CleanName(input); got != want {
			t.Errorf("CleanName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestAbsoluteTrackNumber(t *testing.T) {
	files := []model.FileEntry{
		ParseFileEntry("1-01 A.mp3", ""),
		ParseFileEntry("1-02 B.mp3", ""),
		ParseFileEntry("1-03 C.mp3", ""),
		ParseFileEntry("2-01 D.mp3", ""),
		ParseFileEntry("2-02 E.mp3", ""),
	}

	want := []int{1, 2, 3, 4, 5}
	for i, f := range files {
		got, ok := AbsoluteTrackNumber(f, files)
		if !ok || got != want[i] {
			t.Errorf("AbsoluteTrackNumber(%q) = %d, %v, want %d", f.RawFilename, got, ok, want[i])
		}
	}

	if _, ok := AbsoluteTrackNumber(ParseFileEntry("Bonus.mp3", ""), files); ok {
		t.Error("unnumbered file has an absolute track number")
	}
}

func TestAbsoluteTrack_RequiresUniqueRecord(t *testing.T) {
	files := []model.FileEntry{ParseFileEntry("01 A.mp3", ""), ParseFileEntry("02 B.mp3", "")}
	s := AbsoluteTrack(files)

	pool := NewPool([]model.TrackRecord{record(1, "A", "a1"), record(1, "A again", "a2"), record(2, "B", "b")})
	if _, ok := s.Find(files[0], pool); ok {
		t.Error("matched a track number carried by two records")
	}

	pool.Take(1)
	i, ok := s.Find(files[0], pool)
	if !ok || pool.Record(i).LinkID != "a1" {
		t.Errorf("Find() = %d, %v, want record a1", i, ok)
	}
}

func TestFuzzyName(t *testing.T) {
	file := ParseFileEntry("01. Main Theme.mp3", "")

	pool := NewPool([]model.TrackRecord{record(9, "Staff Roll", "x"), record(7, "Main Theme", "y")})
	i, ok := FuzzyName(DefaultCutoff).Find(file, pool)
	if !ok || pool.Record(i).LinkID != "y" {
		t.Fatalf("Find() = %d, %v, want record y", i, ok)
	}

	strict := NewPool([]model.TrackRecord{record(7, "Main Thema", "z")})
	if _, ok := FuzzyName(0.99).Find(file, strict); ok {
		t.Error("Main Thema accepted at cutoff 0.99")
	}
	if _, ok := FuzzyName(DefaultCutoff).Find(file, strict); !ok {
		t.Error("Main Thema rejected at the default cutoff")
	}
}

func TestFuzzyName_ZeroCutoffAcceptsAnything(t *testing.T) {
	file := ParseFileEntry("01 abc.mp3", "")
	pool := NewPool([]model.TrackRecord{record(1, "xyz", "z")})

	i, ok := FuzzyName(0).Find(file, pool)
	if !ok || i != 0 {
		t.Errorf("Find() = %d, %v, want 0, true", i, ok)
	}
}

func TestFuzzyName_TiesKeepFirstRecord(t *testing.T) {
	file := ParseFileEntry("Theme.mp3", "")
	pool := NewPool([]model.TrackRecord{record(1, "Themes", "first"), record(2, "Themes", "second")})

	i, ok := FuzzyName(0.5).Find(file, pool)
	if !ok || pool.Record(i).LinkID != "first" {
		t.Errorf("Find() = %d, %v, want record first", i, ok)
	}
}

func TestSimilarity_Normalises(t *testing.T) {
	if got := Similarity("Cafe\u0301", "Caf\u00e9"); got != 1 {
		t.Errorf("Similarity() = %v, want 1", got)
	}
	if got := Similarity("Main Theme", "Main Thema"); got != 0.9 {
		t.Errorf("Similarity() = %v, want 0.9", got)
	}
}

func TestResolve(t *testing.T) {
	files := []model.FileEntry{
		ParseFileEntry("1-01 Opening.mp3", ""),
		ParseFileEntry("1-02 Field.mp3", ""),
		ParseFileEntry("1-03 Town.mp3", ""),
		ParseFileEntry("2-01 Castle.mp3", ""),
		ParseFileEntry("2-02 Ending.mp3", ""),
		ParseFileEntry("Bonus Track.mp3", "Bonus Track"),
		ParseFileEntry("Unknown.mp3", ""),
	}
	records := []model.TrackRecord{
		record(5, "Ending", "e"),
		record(4, "Castle", "d"),
		record(1, "Opening", "a"),
		record(2, "Field", "b"),
		record(3, "Town", "c"),
		record(99, "Bonus Track", "f"),
		record(100, "Never Used", "g"),
	}

	res := Resolve(files, records, DefaultCutoff)

	want := map[string]struct {
		link     string
		strategy string
	}{
		"1-01 Opening.mp3": {"a", StrategyAbsoluteTrack},
		"1-02 Field.mp3":   {"b", StrategyAbsoluteTrack},
		"1-03 Town.mp3":    {"c", StrategyAbsoluteTrack},
		"2-01 Castle.mp3":  {"d", StrategyAbsoluteTrack},
		"2-02 Ending.mp3":  {"e", StrategyAbsoluteTrack},
		"Bonus Track.mp3":  {"f", StrategyExactName},
	}
	if len(res.Assignments) != len(want) {
		t.Fatalf("got %d assignments, want %d", len(res.Assignments), len(want))
	}
	for _, a := range res.Assignments {
		w, ok := want[a.File.RawFilename]
		if !ok {
			t.Errorf("unexpected assignment for %q", a.File.RawFilename)
			continue
		}
		if a.Record.LinkID != w.link || a.Strategy != w.strategy {
			t.Errorf("%q -> %q via %s, want %q via %s",
				a.File.RawFilename, a.Record.LinkID, a.Strategy, w.link, w.strategy)
		}
	}

	if len(res.Unmatched) != 1 || res.Unmatched[0].RawFilename != "Unknown.mp3" {
		t.Errorf("Unmatched = %+v", res.Unmatched)
	}
	if len(res.Leftover) != 1 || res.Leftover[0].LinkID != "g" {
		t.Errorf("Leftover = %+v", res.Leftover)
	}
}

func TestResolve_FallsBackToFuzzy(t *testing.T) {
	files := []model.FileEntry{
		ParseFileEntry("01 Prologue.mp3", ""),
		ParseFileEntry("02 Prologue (Reprise).mp3", ""),
	}
	// Track numbers in the script do not line up with the page.
	records := []model.TrackRecord{
		record(10, "Prologue (Reprise)", "r"),
		record(11, "Prologue", "p"),
	}

	res := Resolve(files, records, DefaultCutoff)
	if len(res.Assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(res.Assignments))
	}
	if got := res.Assignments[0].Record.LinkID; got != "p" {
		t.Errorf("Prologue -> %q, want p", got)
	}
	if got := res.Assignments[1].Record.LinkID; got != "r" {
		t.Errorf("Prologue (Reprise) -> %q, want r", got)
	}
	for _, a := range res.Assignments {
		if a.Strategy != StrategyFuzzyName && a.Strategy != StrategyExactName {
			t.Errorf("%q resolved via %s", a.File.RawFilename, a.Strategy)
		}
	}
}

func TestResolve_NeverReusesRecords(t *testing.T) {
	for n := 0; n < 8; n++ {
		t.Run(fmt.Sprintf("%d files", n), func(t *testing.T) {
			var files []model.FileEntry
			for i := 1; i <= n; i++ {
				files = append(files, ParseFileEntry(fmt.Sprintf("%02d Theme.mp3", i), ""))
			}
			records := []model.TrackRecord{
				record(1, "Theme", "a"),
				record(1, "Theme", "b"),
				record(2, "Theme", "c"),
			}

			res := Resolve(files, records, 0.5)

			seen := map[string]bool{}
			for _, a := range res.Assignments {
				if seen[a.Record.LinkID] {
					t.Errorf("link ID %q assigned twice", a.Record.LinkID)
				}
				seen[a.Record.LinkID] = true
			}
			if got := len(res.Assignments) + len(res.Unmatched); got != len(files) {
				t.Errorf("assigned + unmatched = %d, want %d", got, len(files))
			}
		})
	}
}

func TestResolve_SharedLinkIDAssignedOnce(t *testing.T) {
	files := []model.FileEntry{
		ParseFileEntry("01. Intro.mp3", ""),
		ParseFileEntry("02. Outro.mp3", ""),
		ParseFileEntry("03. Credits.mp3", ""),
	}
	records := []model.TrackRecord{
		record(1, "Intro", "same"),
		record(2, "Outro", "same"),
		record(3, "Credits", "other"),
	}

	res := Resolve(files, records, DefaultCutoff)

	counts := map[string]int{}
	for _, a := range res.Assignments {
		counts[a.Record.LinkID]++
	}
	for id, n := range counts {
		if n > 1 {
			t.Errorf("link ID %q assigned %d times", id, n)
		}
	}
	if len(res.Assignments) != 2 || len(res.Unmatched) != 1 {
		t.Fatalf("assignments = %d, unmatched = %d, want 2 and 1", len(res.Assignments), len(res.Unmatched))
	}
	if res.Unmatched[0].RawFilename != "02. Outro.mp3" {
		t.Errorf("unmatched = %q, want 02. Outro.mp3", res.Unmatched[0].RawFilename)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	files := []model.FileEntry{
		ParseFileEntry("Theme A.mp3", ""),
		ParseFileEntry("Theme B.mp3", ""),
		ParseFileEntry("Theme C.mp3", ""),
	}
	records := []model.TrackRecord{
		record(1, "Theme B", "b"),
		record(2, "Theme C", "c"),
		record(3, "Theme A", "a"),
	}

	first := Resolve(files, records, 0.6)
	for i := 0; i < 10; i++ {
		again := Resolve(files, records, 0.6)
		for j := range first.Assignments {
			if first.Assignments[j] != again.Assignments[j] {
				t.Fatalf("run %d differs at %d: %+v vs %+v", i, j, first.Assignments[j], again.Assignments[j])
			}
		}
	}
}

func TestPool(t *testing.T) {
	source := []model.TrackRecord{record(1, "A", "a"), record(2, "B", "b")}
	p := NewPool(source)

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	if _, ok := p.Take(0); !ok {
		t.Fatal("Take(0) failed")
	}
	if _, ok := p.Take(0); ok {
		t.Error("Take(0) succeeded twice")
	}
	if _, ok := p.Take(5); ok {
		t.Error("Take(5) succeeded out of range")
	}
	if p.Len() != 1 || len(p.Remaining()) != 1 || p.Remaining()[0].LinkID != "b" {
		t.Errorf("Remaining() = %+v", p.Remaining())
	}

	shared := NewPool([]model.TrackRecord{record(1, "A", "x"), record(2, "B", "y"), record(3, "C", "x")})
	if _, ok := shared.Take(2); !ok {
		t.Fatal("Take(2) failed")
	}
	if shared.Available(0) || shared.Len() != 1 {
		t.Errorf("record sharing the taken link ID still available, Len() = %d", shared.Len())
	}

	source[1].LinkID = "changed"
	if p.Record(1).LinkID != "b" {
		t.Error("pool shares storage with the caller's slice")
	}
}
