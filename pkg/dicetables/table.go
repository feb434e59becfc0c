package dicetables

import "strings"

// DiceTable is the distribution of a set of dice together with the record
// of which dice produced it. Tables are immutable.
type DiceTable struct {
	dist   *Distribution
	record DiceRecord
}

// NewDiceTable returns the empty table: distribution {0: 1}, no dice.
func NewDiceTable() *DiceTable {
	return &DiceTable{dist: Identity(), record: NewRecord()}
}

func (t *DiceTable) rebuild(dist *Distribution, record DiceRecord) *DiceTable {
	return &DiceTable{dist: dist, record: record}
}

// AddDie returns the table with count more of d rolled into it.
func (t *DiceTable) AddDie(count int, d Descriptor) (*DiceTable, error) {
	dist, record, err := addDie(t.dist, t.record, count, d)
	if err != nil {
		return nil, err
	}

	return t.rebuild(dist, record), nil
}

// RemoveDie returns the table with count of d taken out. Unlike
// Distribution.Remove, it fails when the table holds fewer than count of d.
func (t *DiceTable) RemoveDie(count int, d Descriptor) (*DiceTable, error) {
	dist, record, err := removeDie(t.dist, t.record, count, d)
	if err != nil {
		return nil, err
	}

	return t.rebuild(dist, record), nil
}

// Distribution returns the table's distribution.
func (t *DiceTable) Distribution() *Distribution { return t.dist }

// Record returns the dice in the table.
func (t *DiceTable) Record() DiceRecord { return t.record }

// DiceList returns the dice and counts sorted by Compare.
func (t *DiceTable) DiceList() []RecordEntry { return t.record.Entries() }

// NumberOfDice returns how many of d the table holds.
func (t *DiceTable) NumberOfDice(d Descriptor) int { return t.record.CountOf(d) }

// Calc returns statistics over the table's distribution.
func (t *DiceTable) Calc(includeZeroes bool) Calculations {
	return NewCalculations(t.dist, includeZeroes)
}

// String lists the dice, one line per die, e.g. "2D6\n1D4+1".
func (t *DiceTable) String() string {
	return recordText(t.record)
}

// DetailedDiceTable is a DiceTable that remembers whether its statistics
// include zero-occurrence values.
type DetailedDiceTable struct {
	dist          *Distribution
	record        DiceRecord
	includeZeroes bool
}

// NewDetailedDiceTable returns the empty detailed table.
func NewDetailedDiceTable(includeZeroes bool) *DetailedDiceTable {
	return &DetailedDiceTable{dist: Identity(), record: NewRecord(), includeZeroes: includeZeroes}
}

func (t *DetailedDiceTable) rebuild(dist *Distribution, record DiceRecord) *DetailedDiceTable {
	return &DetailedDiceTable{dist: dist, record: record, includeZeroes: t.includeZeroes}
}

// AddDie returns the table with count more of d rolled into it.
func (t *DetailedDiceTable) AddDie(count int, d Descriptor) (*DetailedDiceTable, error) {
	dist, record, err := addDie(t.dist, t.record, count, d)
	if err != nil {
		return nil, err
	}

	return t.rebuild(dist, record), nil
}

// RemoveDie returns the table with count of d taken out.
func (t *DetailedDiceTable) RemoveDie(count int, d Descriptor) (*DetailedDiceTable, error) {
	dist, record, err := removeDie(t.dist, t.record, count, d)
	if err != nil {
		return nil, err
	}

	return t.rebuild(dist, record), nil
}

// SwitchIncludeZeroes returns the same table with the zero flag flipped.
func (t *DetailedDiceTable) SwitchIncludeZeroes() *DetailedDiceTable {
	return &DetailedDiceTable{dist: t.dist, record: t.record, includeZeroes: !t.includeZeroes}
}

// IncludeZeroes reports whether Calc includes zero-occurrence values.
func (t *DetailedDiceTable) IncludeZeroes() bool { return t.includeZeroes }

// Calc returns statistics honouring IncludeZeroes.
func (t *DetailedDiceTable) Calc() Calculations {
	return NewCalculations(t.dist, t.includeZeroes)
}

func (t *DetailedDiceTable) Distribution() *Distribution   { return t.dist }
func (t *DetailedDiceTable) Record() DiceRecord            { return t.record }
func (t *DetailedDiceTable) DiceList() []RecordEntry       { return t.record.Entries() }
func (t *DetailedDiceTable) NumberOfDice(d Descriptor) int { return t.record.CountOf(d) }
func (t *DetailedDiceTable) String() string                { return recordText(t.record) }

func addDie(dist *Distribution, record DiceRecord, count int, d Descriptor) (*Distribution, DiceRecord, error) {
	next, err := record.Add(count, d)
	if err != nil {
		return nil, DiceRecord{}, err
	}

	combined, err := dist.Combine(d.Distribution(), count)
	if err != nil {
		return nil, DiceRecord{}, err
	}

	return combined, next, nil
}

func removeDie(dist *Distribution, record DiceRecord, count int, d Descriptor) (*Distribution, DiceRecord, error) {
	next, err := record.Remove(count, d)
	if err != nil {
		return nil, DiceRecord{}, err
	}

	removed, err := dist.Remove(d.Distribution(), count)
	if err != nil {
		return nil, DiceRecord{}, err
	}

	return removed, next, nil
}

func recordText(record DiceRecord) string {
	entries := record.Entries()

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.Die.MultiplyString(entry.Count))
	}

	return strings.Join(lines, "\n")
}
