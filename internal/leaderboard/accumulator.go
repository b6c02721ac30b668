package leaderboard

// Accumulator collects candidates across extraction rounds, keeping the
// first record seen for each key. Records stay in arrival order and are
// never removed or rewritten once accepted.
type Accumulator struct {
	keys       map[string]struct{}
	records    []Candidate
	skipped    int
	duplicates int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{keys: make(map[string]struct{})}
}

// Merge folds one round of candidates in and reports how many were new.
// Keyless candidates are skipped, repeated keys keep the earlier record.
func (a *Accumulator) Merge(candidates []Candidate) int {
	added := 0
	for _, c := range candidates {
		key := c.Key()
		if key == "" {
			a.skipped++
			continue
		}
		if _, seen := a.keys[key]; seen {
			a.duplicates++
			continue
		}
		a.keys[key] = struct{}{}
		a.records = append(a.records, c)
		added++
	}
	return added
}

// Size reports how many unique records have been accepted so far.
func (a *Accumulator) Size() int {
	return len(a.records)
}

// Records returns the accepted records in arrival order.
func (a *Accumulator) Records() []Candidate {
	return a.records
}

// Skipped reports candidates dropped for lacking any identity.
func (a *Accumulator) Skipped() int {
	return a.skipped
}

// Duplicates reports candidates rejected as already seen.
func (a *Accumulator) Duplicates() int {
	return a.duplicates
}
