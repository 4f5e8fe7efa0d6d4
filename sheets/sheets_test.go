package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func decodeValues(t *testing.T, payload string) Values {
	t.Helper()
	sheets, err := Decode([]byte(payload))
	require.NoError(t, err)
	return sheets[""]
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		sheets  []string
	}{
		{"array", `[["a"],["1"]]`, []string{""}},
		{"values", `{"values":[["a"],["1"]]}`, []string{""}},
		{"sheets", `{"sheets":{"One":[["a"]],"Two":[]}}`, []string{"One", "Two"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sheets, err := Decode([]byte(tc.payload))
			require.NoError(t, err)
			for _, name := range tc.sheets {
				assert.Contains(t, sheets, name)
			}
			assert.Len(t, sheets, len(tc.sheets))
		})
	}

	for _, payload := range []string{`{"foo":1}`, `"x"`, `[1,2]`, `{"sheets":{"a":1}}`} {
		_, err := Decode([]byte(payload))
		assert.ErrorIs(t, err, ErrPayload, payload)
	}
	_, err := Decode([]byte(`[`))
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	values := decodeValues(t, `[
		[" id ", "title", "#note", "_hidden", "", "year"],
		["a", "First", "x", "y", "z", 1990],
		["", "", "", "", "", ""],
		["b", "", "x", "y", "z", "2001"]
	]`)

	rows, err := Rows(values, RowOptions{})
	require.NoError(t, err)
	assert.Equal(t,
		`[{"id":"a","title":"First","year":1990},{"id":"b","year":"2001"}]`,
		encode(t, rows))

	rows, err = Rows(values, RowOptions{KeepEmpty: true, Coerce: true})
	require.NoError(t, err)
	assert.Equal(t,
		`[{"id":"a","title":"First","year":1990},{"id":"b","title":"","year":2001}]`,
		encode(t, rows))

	rows, err = Rows(values, RowOptions{Key: "id"})
	require.NoError(t, err)
	assert.Equal(t,
		`{"a":{"id":"a","title":"First","year":1990},"b":{"id":"b","year":"2001"}}`,
		encode(t, rows))
	keyed := rows.(*Keyed)
	assert.Equal(t, 2, keyed.Len())
	rec, ok := keyed.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "title", "year"}, rec.Keys())
}

func TestRows_Errors(t *testing.T) {
	_, err := Rows(decodeValues(t, `[["id","id"]]`), RowOptions{})
	assert.ErrorContains(t, err, "duplicate header")

	_, err = Rows(decodeValues(t, `[["id"],["a"]]`), RowOptions{Key: "name"})
	assert.ErrorContains(t, err, "not found")

	_, err = Rows(decodeValues(t, `[["id","v"],["a","1"],["a","2"]]`), RowOptions{Key: "id"})
	assert.ErrorContains(t, err, "duplicate key")

	_, err = Rows(decodeValues(t, `[["id","v"],["","1"]]`), RowOptions{Key: "id"})
	assert.ErrorContains(t, err, "missing key")

	rows, err := Rows(nil, RowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "[]", encode(t, rows))
}

func TestCoerce(t *testing.T) {
	testCases := []struct {
		in   any
		want any
	}{
		{"TRUE", true},
		{"false", false},
		{"42", json.Number("42")},
		{"-1.5e3", json.Number("-1.5e3")},
		{"007", "007"},
		{"NaN", "NaN"},
		{"1,5", "1,5"},
		{json.Number("3"), json.Number("3")},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, coerce(tc.in), tc.in)
	}
}

func TestExporter_Export(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/single", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"values":[["id","name"],["1","One"]]}`))
	})
	mux.HandleFunc("/multi", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sheets":{"B":[["x"],["2"]],"A":[["x"],["1"]]}}`))
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>login</html>`))
	})
	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	e := &Exporter{Client: srv.Client()}
	ctx := context.Background()

	out := filepath.Join(dir, "data", "single.json")
	require.NoError(t, e.Export(ctx, Job{Name: "single", URL: srv.URL + "/single", Output: out, RowOptions: RowOptions{Coerce: true}}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"One"}]`, string(data))

	out = filepath.Join(dir, "multi.json")
	require.NoError(t, e.Export(ctx, Job{URL: srv.URL + "/multi", Output: out}))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":[{"x":"1"}],"B":[{"x":"2"}]}`, string(data))

	out = filepath.Join(dir, "b.json")
	require.NoError(t, e.Export(ctx, Job{URL: srv.URL + "/multi", Output: out, Sheet: "B"}))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":"2"}]`, string(data))

	assert.Error(t, e.Export(ctx, Job{URL: srv.URL + "/multi", Output: out, Sheet: "C"}))
	assert.Error(t, e.Export(ctx, Job{URL: srv.URL + "/single", Output: out, Sheet: "C"}))
	assert.ErrorContains(t, e.Export(ctx, Job{URL: srv.URL + "/html", Output: out}), "did not return JSON")
	assert.ErrorContains(t, e.Export(ctx, Job{URL: srv.URL + "/fail", Output: out}), "403")
	assert.Error(t, e.Export(ctx, Job{URL: "not a url", Output: out}))
	assert.Error(t, e.Export(ctx, Job{URL: srv.URL + "/single"}))
}
