// Package sheets exports spreadsheets published by a Google Apps Script web
// app into the JSON files consumed by the timeline.
package sheets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrPayload is returned for JSON documents which do not hold sheet values.
var ErrPayload = errors.New("sheets: unrecognized payload")

// Values holds the cells of a sheet, row by row.
type Values [][]any

// RowOptions control the conversion of rows into records.
type RowOptions struct {
	// KeepEmpty keeps the empty cells as empty strings.
	KeepEmpty bool `yaml:"keep_empty"`
	// Key turns the result into an object keyed by the values of this column.
	Key string `yaml:"key"`
	// Coerce converts "TRUE"/"FALSE" into booleans and numeric strings into numbers.
	Coerce bool `yaml:"coerce"`
}

// Record is a row keyed by header. It is encoded with its fields in column order.
type Record struct {
	keys   []string
	values map[string]any
}

func newRecord() *Record {
	return &Record{values: make(map[string]any)}
}

func (r *Record) set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value of a field.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in column order.
func (r *Record) Keys() []string {
	return r.keys
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keyed is a set of records keyed by a column, encoded in row order.
type Keyed struct {
	order   []string
	records map[string]*Record
}

// Get returns the record with the given key.
func (k *Keyed) Get(key string) (*Record, bool) {
	r, ok := k.records[key]
	return r, ok
}

// Len returns the number of records.
func (k *Keyed) Len() int {
	return len(k.order)
}

// MarshalJSON implements json.Marshaler.
func (k *Keyed) MarshalJSON() ([]byte, error) {
	rec := &Record{keys: k.order, values: make(map[string]any, len(k.records))}
	for key, r := range k.records {
		rec.values[key] = r
	}
	return rec.MarshalJSON()
}

// Decode parses a payload: a 2-D array of cells, {"values": [[...]]} or
// {"sheets": {"Name": [[...]]}}. Single sheet payloads are returned under the
// empty name. Numbers are kept as delivered.
func Decode(data []byte) (map[string]Values, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("sheets: invalid JSON: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		values, err := toValues(v)
		if err != nil {
			return nil, err
		}
		return map[string]Values{"": values}, nil
	case map[string]any:
		if cells, ok := v["values"].([]any); ok {
			values, err := toValues(cells)
			if err != nil {
				return nil, err
			}
			return map[string]Values{"": values}, nil
		}
		if sheets, ok := v["sheets"].(map[string]any); ok {
			out := make(map[string]Values, len(sheets))
			for name, s := range sheets {
				cells, ok := s.([]any)
				if !ok {
					return nil, fmt.Errorf("%w: sheet %q is not an array", ErrPayload, name)
				}
				values, err := toValues(cells)
				if err != nil {
					return nil, fmt.Errorf("sheet %q: %w", name, err)
				}
				out[name] = values
			}
			return out, nil
		}
	}
	return nil, ErrPayload
}

func toValues(rows []any) (Values, error) {
	values := make(Values, 0, len(rows))
	for i, r := range rows {
		cells, ok := r.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: row %d is not an array", ErrPayload, i+1)
		}
		values = append(values, cells)
	}
	return values, nil
}

// Rows converts the sheet into records. The first row holds the headers;
// headers starting with '#' or '_' are private and dropped, like the empty
// ones. Fully empty rows are skipped. The result is a []*Record, or a *Keyed
// when opts.Key is set.
func Rows(values Values, opts RowOptions) (any, error) {
	if len(values) == 0 {
		if opts.Key != "" {
			return &Keyed{records: map[string]*Record{}}, nil
		}
		return []*Record{}, nil
	}

	type column struct {
		index int
		name  string
	}
	var (
		columns []column
		seen    = make(map[string]bool)
		keyCol  = -1
	)
	for i, h := range values[0] {
		name := strings.TrimSpace(cellString(h))
		if name == "" || strings.HasPrefix(name, "#") || strings.HasPrefix(name, "_") {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("sheets: duplicate header %q", name)
		}
		seen[name] = true
		if name == opts.Key {
			keyCol = i
		}
		columns = append(columns, column{index: i, name: name})
	}
	if opts.Key != "" && keyCol < 0 {
		return nil, fmt.Errorf("sheets: key column %q not found", opts.Key)
	}

	records := []*Record{}
	keyed := &Keyed{records: make(map[string]*Record)}
	for n, row := range values[1:] {
		if rowEmpty(row) {
			continue
		}
		rec := newRecord()
		for _, c := range columns {
			var v any
			if c.index < len(row) {
				v = row[c.index]
			}
			if isEmpty(v) {
				if opts.KeepEmpty {
					rec.set(c.name, "")
				}
				continue
			}
			if opts.Coerce {
				v = coerce(v)
			}
			rec.set(c.name, v)
		}

		if opts.Key == "" {
			records = append(records, rec)
			continue
		}
		var key string
		if keyCol < len(row) {
			key = strings.TrimSpace(cellString(row[keyCol]))
		}
		if key == "" {
			return nil, fmt.Errorf("sheets: row %d: missing key %q", n+2, opts.Key)
		}
		if _, ok := keyed.records[key]; ok {
			return nil, fmt.Errorf("sheets: row %d: duplicate key %q", n+2, key)
		}
		keyed.order = append(keyed.order, key)
		keyed.records[key] = rec
	}

	if opts.Key != "" {
		return keyed, nil
	}
	return records, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func rowEmpty(row []any) bool {
	for _, v := range row {
		if !isEmpty(v) {
			return false
		}
	}
	return true
}

var numberRe = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?(?:[eE][+-]?\d+)?$`)

func coerce(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t := strings.TrimSpace(s)
	switch {
	case strings.EqualFold(t, "true"):
		return true
	case strings.EqualFold(t, "false"):
		return false
	case numberRe.MatchString(t):
		return json.Number(t)
	}
	return v
}
