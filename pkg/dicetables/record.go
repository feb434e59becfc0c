package dicetables

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// RecordEntry is one die and how many of it a record holds.
type RecordEntry struct {
	Die   Descriptor
	Count int
}

// DiceRecord is an immutable multiset of dice. Counts are always positive;
// Add and Remove return new records.
type DiceRecord struct {
	entries map[string]RecordEntry
}

// NewRecord returns an empty record.
func NewRecord() DiceRecord {
	return DiceRecord{entries: map[string]RecordEntry{}}
}

// RecordFrom builds a record from entries, summing repeated dice.
// Zero counts are skipped; negative counts are rejected.
func RecordFrom(entries ...RecordEntry) (DiceRecord, error) {
	record := NewRecord()

	for _, entry := range entries {
		var err error

		record, err = record.Add(entry.Count, entry.Die)
		if err != nil {
			return DiceRecord{}, err
		}
	}

	return record, nil
}

// Add returns a record with count more of d. A total beyond math.MaxInt
// fails with ErrCountOverflow.
func (r DiceRecord) Add(count int, d Descriptor) (DiceRecord, error) {
	if count < 0 {
		return DiceRecord{}, fmt.Errorf("%w: add %d of %s", ErrNegativeCount, count, d)
	}

	held := r.CountOf(d)
	if count > math.MaxInt-held {
		return DiceRecord{}, fmt.Errorf("%w: add %d of %s, have %d", ErrCountOverflow, count, d, held)
	}

	return r.with(d, held+count), nil
}

// Remove returns a record with count fewer of d. Removing more than the
// record holds fails with ErrRecordUnderflow.
func (r DiceRecord) Remove(count int, d Descriptor) (DiceRecord, error) {
	if count < 0 {
		return DiceRecord{}, fmt.Errorf("%w: remove %d of %s", ErrNegativeCount, count, d)
	}

	held := r.CountOf(d)
	if count > held {
		return DiceRecord{}, fmt.Errorf("%w: remove %d of %s, have %d", ErrRecordUnderflow, count, d, held)
	}

	return r.with(d, held-count), nil
}

// CountOf returns how many of d the record holds.
func (r DiceRecord) CountOf(d Descriptor) int {
	return r.entries[Key(d)].Count
}

// Entries returns the dice and counts sorted by Compare.
func (r DiceRecord) Entries() []RecordEntry {
	entries := slices.Collect(maps.Values(r.entries))
	slices.SortFunc(entries, func(a, b RecordEntry) int { return Compare(a.Die, b.Die) })

	return entries
}

// Len returns the number of distinct dice.
func (r DiceRecord) Len() int {
	return len(r.entries)
}

// Equal reports whether both records hold the same dice in the same counts.
func (r DiceRecord) Equal(other DiceRecord) bool {
	return maps.EqualFunc(r.entries, other.entries, func(a, b RecordEntry) bool {
		return a.Count == b.Count
	})
}

// String renders the record as [(die, count), ...].
func (r DiceRecord) String() string {
	parts := make([]string, 0, len(r.entries))
	for _, entry := range r.Entries() {
		parts = append(parts, fmt.Sprintf("(%s, %d)", entry.Die, entry.Count))
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func (r DiceRecord) with(d Descriptor, count int) DiceRecord {
	entries := maps.Clone(r.entries)
	if entries == nil {
		entries = map[string]RecordEntry{}
	}

	key := Key(d)
	if count == 0 {
		delete(entries, key)
	} else {
		entries[key] = RecordEntry{Die: d, Count: count}
	}

	return DiceRecord{entries: entries}
}
