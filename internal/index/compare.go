package index

import (
	"fmt"
	"strings"
)

// CompareOptions relax the logical comparison.
type CompareOptions struct {
	AllowExtraRows bool
	AllowExtraCols bool
}

// MismatchKind classifies one comparison failure.
type MismatchKind uint8

const (
	MissingRow MismatchKind = iota + 1
	MissingCol
	WrongValue
	ExtraCol
	ExtraRow
)

func (k MismatchKind) String() string {
	switch k {
	case MissingRow:
		return "missing row"
	case MissingCol:
		return "missing column"
	case WrongValue:
		return "wrong value"
	case ExtraCol:
		return "extra column"
	case ExtraRow:
		return "extra row"
	default:
		return "mismatch"
	}
}

// Mismatch is one difference between the expected and found rows.
type Mismatch struct {
	Kind  MismatchKind
	Row   Record
	Col   string
	Want  string
	Found string
}

func (m Mismatch) String() string {
	switch m.Kind {
	case MissingCol:
		return fmt.Sprintf("%s %q in row %s", m.Kind, m.Col, formatRecord(m.Row))
	case WrongValue:
		return fmt.Sprintf("%s for %q: found %q, expected %q in row %s", m.Kind, m.Col, m.Found, m.Want, formatRecord(m.Row))
	case ExtraCol:
		return fmt.Sprintf("%s %q in row %s", m.Kind, m.Col, formatRecord(m.Row))
	default:
		return fmt.Sprintf("%s %s", m.Kind, formatRecord(m.Row))
	}
}

func formatRecord(r Record) string {
	var sb strings.Builder
	sb.WriteString(r.Kind)
	for _, f := range r.Fields {
		sb.WriteByte(',')
		sb.WriteString(f.Key)
		sb.WriteByte('=')
		sb.WriteString(f.Val)
	}
	return sb.String()
}

// Report is the outcome of Compare.
type Report struct {
	Mismatches []Mismatch
	// Skipped counts rows without extent_start; they cannot be keyed.
	Skipped int
	Matched int
}

// OK reports whether the found rows satisfy the expectation.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

type rowKey struct {
	kind  string
	start string
}

func keyOf(r Record) (rowKey, bool) {
	start, ok := r.Get(ColExtentStart)
	return rowKey{kind: r.Kind, start: start}, ok
}

// Compare matches expected against found rows keyed by kind and
// extent_start. Every expected column must be present with the same
// value; extra columns and extra found rows fail unless allowed. When
// found has several rows with one key, the last one wins.
func Compare(expected, found []Record, opts CompareOptions) *Report {
	rep := &Report{}

	pool := make(map[rowKey]Record, len(found))
	var order []rowKey
	for _, r := range found {
		k, ok := keyOf(r)
		if !ok {
			rep.Skipped++
			continue
		}
		if _, seen := pool[k]; !seen {
			order = append(order, k)
		}
		pool[k] = r
	}

	for _, ex := range expected {
		k, ok := keyOf(ex)
		if !ok {
			rep.Skipped++
			continue
		}
		got, ok := pool[k]
		if !ok {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Kind: MissingRow, Row: ex})
			continue
		}
		delete(pool, k)
		before := len(rep.Mismatches)
		for _, f := range ex.Fields {
			val, ok := got.Get(f.Key)
			switch {
			case !ok:
				rep.Mismatches = append(rep.Mismatches, Mismatch{Kind: MissingCol, Row: ex, Col: f.Key, Want: f.Val})
			case val != f.Val:
				rep.Mismatches = append(rep.Mismatches, Mismatch{Kind: WrongValue, Row: got, Col: f.Key, Want: f.Val, Found: val})
			}
		}
		if !opts.AllowExtraCols {
			for _, f := range got.Fields {
				if _, ok := ex.Get(f.Key); !ok {
					rep.Mismatches = append(rep.Mismatches, Mismatch{Kind: ExtraCol, Row: got, Col: f.Key, Found: f.Val})
				}
			}
		}
		if len(rep.Mismatches) == before {
			rep.Matched++
		}
	}

	if !opts.AllowExtraRows {
		for _, k := range order {
			if r, ok := pool[k]; ok {
				rep.Mismatches = append(rep.Mismatches, Mismatch{Kind: ExtraRow, Row: r})
			}
		}
	}
	return rep
}
