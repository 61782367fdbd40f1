package parse

import "strings"

// HeaderMap maps normalized header names to column indexes.
type HeaderMap struct {
	index map[string]int
}

// NewHeaderMap builds a HeaderMap from a header row. Names are trimmed and
// lower-cased; when a name repeats the first column wins.
func NewHeaderMap(header []string) *HeaderMap {
	hm := &HeaderMap{index: make(map[string]int, len(header))}
	for i, h := range header {
		key := normalize(h)
		if key == "" {
			continue
		}
		if _, ok := hm.index[key]; !ok {
			hm.index[key] = i
		}
	}
	return hm
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Index returns the column of the first candidate present in the header.
func (hm *HeaderMap) Index(candidates []string) (int, bool) {
	for _, c := range candidates {
		if i, ok := hm.index[normalize(c)]; ok {
			return i, true
		}
	}
	return -1, false
}

// Lookup finds the raw cell for a field. Candidates are tried in order and the
// first header that exists within the row wins. When none matches, the cell at
// fallback is used if fallback is in range (pass -1 to disable). ok is false
// when no cell was found or the cell is blank.
func (hm *HeaderMap) Lookup(row []string, candidates []string, fallback int) (string, bool) {
	for _, c := range candidates {
		i, found := hm.index[normalize(c)]
		if !found || i >= len(row) {
			continue
		}
		return cell(row, i)
	}
	if fallback >= 0 && fallback < len(row) {
		return cell(row, fallback)
	}
	return "", false
}

// Resolve is Lookup with a default for missing or blank cells.
func (hm *HeaderMap) Resolve(row []string, candidates []string, fallback int, def string) string {
	if v, ok := hm.Lookup(row, candidates, fallback); ok {
		return v
	}
	return def
}

// Recognized counts the fields with at least one candidate in the header.
func (hm *HeaderMap) Recognized(fields []Field) int {
	n := 0
	for _, f := range fields {
		if _, ok := hm.Index(f.Candidates); ok {
			n++
		}
	}
	return n
}

func cell(row []string, i int) (string, bool) {
	v := strings.TrimSpace(row[i])
	if v == "" {
		return "", false
	}
	return v, true
}
