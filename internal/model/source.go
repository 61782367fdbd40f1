package model

// Source records where a batch of towers came from.
type Source string

const (
	// SourceSheets means the batch was fetched live from the spreadsheet.
	SourceSheets Source = "sheets"
	// SourceCache means the batch was read back from the persisted cache.
	SourceCache Source = "cache"
	// SourceMock means every other tier failed and demonstration data is shown.
	SourceMock Source = "mock"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceSheets, SourceCache, SourceMock:
		return true
	default:
		return false
	}
}

// Tag returns copies of towers with Source set to src. The input slice is
// not modified.
func Tag(towers []Tower, src Source) []Tower {
	out := make([]Tower, len(towers))
	for i, t := range towers {
		t.Source = src
		if len(t.Missing) > 0 {
			t.Missing = append([]string(nil), t.Missing...)
		}
		out[i] = t
	}
	return out
}

// Uniform reports whether every tower carries the same source as src.
func Uniform(towers []Tower, src Source) bool {
	for _, t := range towers {
		if t.Source != src {
			return false
		}
	}
	return true
}
