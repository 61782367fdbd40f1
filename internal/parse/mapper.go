package parse

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/towerdash/internal/geo"
	"github.com/sells-group/towerdash/internal/model"
)

// MinRowCells is the fewest cells a data row needs to be considered.
const MinRowCells = 3

// SkipError explains why a row produced no tower.
type SkipError struct {
	Row    int
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("row %d skipped: %s", e.Row, e.Reason)
}

// Skip is a row left out of a mapped batch.
type Skip struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the outcome of mapping a whole grid.
type Result struct {
	Towers  []model.Tower `json:"towers"`
	Skipped []Skip        `json:"skipped,omitempty"`
	Legacy  bool          `json:"legacy"`
}

// MapGrid maps every data row of grid (row 0 holds the headers). A grid with
// fewer than two rows yields an empty result.
func MapGrid(grid [][]string) Result {
	var res Result
	if len(grid) < 2 {
		return res
	}

	hm := NewHeaderMap(grid[0])
	res.Legacy = hm.Recognized(Fields) == 0
	if res.Legacy {
		zap.L().Debug("parse: no known headers, using positional layout",
			zap.Strings("headers", grid[0]),
		)
	}

	for i := 1; i < len(grid); i++ {
		t, err := mapRow(grid[i], i, hm, res.Legacy)
		if err != nil {
			zap.L().Debug("parse: skipping row", zap.Int("row", i), zap.Error(err))
			reason := err.Error()
			var skip *SkipError
			if errors.As(err, &skip) {
				reason = skip.Reason
			}
			res.Skipped = append(res.Skipped, Skip{Row: i, Reason: reason})
			continue
		}
		res.Towers = append(res.Towers, *t)
	}
	return res
}

// MapRow maps one data row. rowIndex is the row's position in the grid and
// becomes part of the tower id. Rows that cannot form a valid tower return a
// *SkipError.
func MapRow(row []string, rowIndex int, hm *HeaderMap) (*model.Tower, error) {
	return mapRow(row, rowIndex, hm, hm.Recognized(Fields) == 0)
}

func mapRow(row []string, rowIndex int, hm *HeaderMap, legacy bool) (*model.Tower, error) {
	if len(row) < MinRowCells {
		return nil, &SkipError{Row: rowIndex, Reason: fmt.Sprintf("only %d cells", len(row))}
	}

	r := &rowReader{hm: hm, row: row, legacy: legacy}

	name := r.optional(FieldName)
	if name == "" {
		return nil, &SkipError{Row: rowIndex, Reason: "missing name"}
	}

	t := &model.Tower{
		ID:          fmt.Sprintf("tower-%d", rowIndex),
		Name:        name,
		Location:    r.location(),
		Coordinates: r.coordinates(),
		Investment: model.Investment{
			Total:           r.number(FieldInvestmentTotal),
			Land:            r.number(FieldLand),
			Structure:       r.number(FieldStructure),
			Equipment:       r.number(FieldEquipment),
			Other:           r.number(FieldOther),
			LocationDetails: r.text(FieldLocationDetails),
		},
		Returns: model.Returns{
			Monthly:            r.number(FieldMonthly),
			OperatorFee:        r.number(FieldOperatorFee),
			TotalContractValue: r.number(FieldTotalContractValue),
			ROI:                r.number(FieldROI),
		},
		Contract: model.Contract{
			Payback:                   r.number(FieldPayback),
			ExpiryLucrativePercentage: r.number(FieldExpiryLucrative),
		},
		Market: model.Market{
			CAGR:           r.number(FieldCAGR),
			TopMarket:      r.text(FieldTopMarket),
			GrowthRegion:   r.text(FieldGrowthRegion),
			CurrentYear:    int(r.number(FieldCurrentYear)),
			ProjectedYear:  int(r.number(FieldProjectedYear)),
			CurrentValue:   r.number(FieldCurrentValue),
			ProjectedValue: r.number(FieldProjectedValue),
		},
		Images: model.Images{
			Location: r.text(FieldLocationImage),
			Tower:    r.text(FieldTowerImage),
		},
	}

	t.Returns.Annual = r.annual(t.Returns.Monthly)
	t.Contract.Duration, t.Contract.Periods = r.contractTerms()

	t.Missing = r.missing
	if t.Investment.Total <= 0 {
		return nil, &SkipError{Row: rowIndex, Reason: "investment total not positive"}
	}
	return t, nil
}

// rowReader resolves fields of a single row and records which ones fell
// back to their defaults.
type rowReader struct {
	hm      *HeaderMap
	row     []string
	legacy  bool
	missing []string
}

func (r *rowReader) lookup(f Field) (string, bool) {
	fallback := -1
	if r.legacy {
		fallback = f.Legacy
	}
	return r.hm.Lookup(r.row, f.Candidates, fallback)
}

func (r *rowReader) optional(f Field) string {
	v, _ := r.lookup(f)
	return v
}

func (r *rowReader) text(f Field) string {
	if v, ok := r.lookup(f); ok {
		return v
	}
	r.missing = append(r.missing, f.Path)
	return f.Text
}

func (r *rowReader) number(f Field) float64 {
	if raw, ok := r.lookup(f); ok {
		if v, ok := NumberOK(raw); ok {
			return v
		}
	}
	r.missing = append(r.missing, f.Path)
	return f.Number
}

// coordinates reads lat/lng and falls back to the default point as a pair
// when either value is not a valid position.
func (r *rowReader) coordinates() model.Coordinates {
	lat, lng := r.number(FieldLat), r.number(FieldLng)
	if geo.InRange(lat, lng) {
		return model.Coordinates{Lat: lat, Lng: lng}
	}
	for _, f := range []Field{FieldLat, FieldLng} {
		if !slices.Contains(r.missing, f.Path) {
			r.missing = append(r.missing, f.Path)
		}
	}
	return model.Coordinates{Lat: FieldLat.Number, Lng: FieldLng.Number}
}

func (r *rowReader) location() string {
	var parts []string
	if !r.legacy {
		for _, f := range []Field{FieldCity, FieldState} {
			if v := r.optional(f); v != "" {
				parts = append(parts, v)
			}
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " - ")
	}
	return r.text(FieldLocation)
}

func (r *rowReader) annual(monthly float64) float64 {
	if raw, ok := r.lookup(FieldAnnual); ok {
		if v, ok := NumberOK(raw); ok {
			return v
		}
	}
	if raw, ok := r.lookup(FieldMonthly); ok {
		if _, ok := NumberOK(raw); ok {
			return monthly * 12
		}
	}
	r.missing = append(r.missing, FieldAnnual.Path)
	return FieldAnnual.Number
}

// contractTerms reads the duration and renewal periods. When the periods text
// comes from the sheet it decides the duration.
func (r *rowReader) contractTerms() (int, string) {
	periodsRaw, hasPeriods := r.lookup(FieldPeriods)

	durationRaw, hasDuration := r.lookup(FieldDuration)
	duration := int(FieldDuration.Number)
	if v, ok := NumberOK(durationRaw); hasDuration && ok {
		duration = int(v)
	} else {
		hasDuration = false
	}

	if !hasPeriods {
		r.missing = append(r.missing, FieldPeriods.Path)
		if !hasDuration {
			r.missing = append(r.missing, FieldDuration.Path)
		}
		return duration, FieldPeriods.Text
	}

	if years, ok := PeriodYears(periodsRaw); ok {
		duration = years
		hasDuration = true
	}
	if !hasDuration {
		r.missing = append(r.missing, FieldDuration.Path)
	}
	return duration, StripYearSuffix(periodsRaw)
}

var (
	yearSuffix    = regexp.MustCompile(`(?i)\s*(anos|ano|years|year)$`)
	periodsSum    = regexp.MustCompile(`^\d+(\s*\+\s*\d+)+$`)
	singlePeriod  = regexp.MustCompile(`^\d+$`)
	periodNumbers = regexp.MustCompile(`\d+`)
)

// PeriodYears infers a contract duration from a renewal schedule:
// "10 + 10 + 10" sums to 30 and "20 anos" is 20.
func PeriodYears(periods string) (int, bool) {
	s := StripYearSuffix(periods)
	switch {
	case periodsSum.MatchString(s):
		total := 0
		for _, n := range periodNumbers.FindAllString(s, -1) {
			v, err := strconv.Atoi(n)
			if err != nil {
				return 0, false
			}
			total += v
		}
		return total, true
	case singlePeriod.MatchString(s):
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// StripYearSuffix removes a trailing "anos"/"years" from a periods string.
func StripYearSuffix(periods string) string {
	return strings.TrimSpace(yearSuffix.ReplaceAllString(strings.TrimSpace(periods), ""))
}
