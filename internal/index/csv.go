package index

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Field is one key/value column.
type Field struct {
	Key string
	Val string
}

// Record is a row in its CSV form: a kind followed by key/value pairs in
// the order they were written.
type Record struct {
	Kind   string
	Fields []Field
}

// Get returns the value of key.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Val, true
		}
	}
	return "", false
}

// Set replaces the value of key or appends it.
func (r *Record) Set(key, val string) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Val = val
			return
		}
	}
	r.Fields = append(r.Fields, Field{Key: key, Val: val})
}

func (r Record) line() []string {
	out := make([]string, 0, 1+2*len(r.Fields))
	out = append(out, r.Kind)
	for _, f := range r.Fields {
		out = append(out, f.Key, f.Val)
	}
	return out
}

// ErrOddFields is returned for a line whose key/value list is not paired.
var ErrOddFields = errors.New("unpaired key/value field")

// WriteCSV writes one line per record: kind,key,val,key,val...
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	for _, r := range recs {
		if err := cw.Write(r.line()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the kind,key,val... format. Empty lines are skipped by
// the csv reader; a later duplicate key overrides the earlier one.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var out []Record
	for {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(line)%2 == 0 {
			row, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", row, ErrOddFields)
		}
		rec := Record{Kind: line[0]}
		for i := 1; i+1 < len(line); i += 2 {
			rec.Set(line[i], line[i+1])
		}
		out = append(out, rec)
	}
}

// ReadCSVFile reads records from path.
func ReadCSVFile(path string) ([]Record, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	recs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
