package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/towerdash/internal/model"
)

func TestMapGrid_EndToEnd(t *testing.T) {
	t.Parallel()

	grid := [][]string{
		{"projeto", "cidade", "estado", "valor_total_investimento"},
		{"Torre X", "Recife", "PE", "500000"},
	}

	res := MapGrid(grid)
	require.Len(t, res.Towers, 1)
	assert.False(t, res.Legacy)

	tw := res.Towers[0]
	assert.Equal(t, "tower-1", tw.ID)
	assert.Equal(t, "Torre X", tw.Name)
	assert.Equal(t, "Recife - PE", tw.Location)
	assert.InDelta(t, 500000, tw.Investment.Total, 1e-9)
	assert.Empty(t, tw.Source, "mapper does not assign provenance")
}

func TestMapGrid_DefaultsAreReported(t *testing.T) {
	t.Parallel()

	res := MapGrid([][]string{
		{"projeto", "cidade", "estado", "valor_total_investimento"},
		{"Torre X", "Recife", "PE", "500000"},
	})
	require.Len(t, res.Towers, 1)
	tw := res.Towers[0]

	assert.False(t, tw.Complete())
	assert.Contains(t, tw.Missing, "investment.land")
	assert.Contains(t, tw.Missing, "coordinates.lat")
	assert.NotContains(t, tw.Missing, "investment.total")
	assert.NotContains(t, tw.Missing, "name")

	assert.InDelta(t, DefaultLat, tw.Coordinates.Lat, 1e-9)
	assert.InDelta(t, DefaultLng, tw.Coordinates.Lng, 1e-9)
	assert.InDelta(t, FieldLand.Number, tw.Investment.Land, 1e-9)
	assert.Equal(t, 30, tw.Contract.Duration)
	assert.Equal(t, "10 + 10 + 10", tw.Contract.Periods)
	assert.Equal(t, PlaceholderImage, tw.Images.Tower)
}

func TestMapGrid_ShortRowSkipped(t *testing.T) {
	t.Parallel()

	grid := [][]string{
		{"projeto", "cidade", "estado", "valor_total_investimento"},
		{"Torre A", "Recife", "PE", "500000"},
		{"Torre B", "Natal"},
		{"Torre C", "Olinda", "PE", "R$ 250.000,00"},
	}

	res := MapGrid(grid)
	assert.Len(t, res.Towers, len(grid)-1-1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Row)

	assert.Equal(t, "tower-1", res.Towers[0].ID)
	assert.Equal(t, "tower-3", res.Towers[1].ID)
	assert.InDelta(t, 250000, res.Towers[1].Investment.Total, 1e-9)
}

func TestMapGrid_InvalidRowsDropped(t *testing.T) {
	t.Parallel()

	res := MapGrid([][]string{
		{"projeto", "cidade", "estado", "valor_total_investimento"},
		{"", "Recife", "PE", "500000"},
		{"Torre Zero", "Recife", "PE", "0"},
		{"Torre Sem Valor", "Recife", "PE", ""},
	})
	assert.Empty(t, res.Towers)
	require.Len(t, res.Skipped, 3)
	assert.Equal(t, "missing name", res.Skipped[0].Reason)
	assert.Equal(t, "investment total not positive", res.Skipped[1].Reason)
}

func TestMapGrid_NeedsHeaderAndData(t *testing.T) {
	t.Parallel()

	assert.Empty(t, MapGrid(nil).Towers)
	assert.Empty(t, MapGrid([][]string{{"projeto"}}).Towers)
}

func TestMapRow_Periods(t *testing.T) {
	t.Parallel()

	hm := NewHeaderMap([]string{"projeto", "cidade", "valor_total", "periodos", "duracao"})

	tests := []struct {
		name         string
		periods      string
		duration     string
		wantDuration int
		wantPeriods  string
	}{
		{"sum of renewals", "10 + 10 + 10", "", 30, "10 + 10 + 10"},
		{"single with anos", "20 anos", "", 20, "20"},
		{"sum with years suffix", "15 + 5 years", "", 20, "15 + 5"},
		{"periods override duration", "10 + 10", "35", 20, "10 + 10"},
		{"free text keeps duration column", "a combinar", "25", 25, "a combinar"},
		{"free text without duration", "a combinar", "", 30, "a combinar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tw, err := MapRow([]string{"Torre", "Recife", "100000", tt.periods, tt.duration}, 4, hm)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDuration, tw.Contract.Duration)
			assert.Equal(t, tt.wantPeriods, tw.Contract.Periods)
		})
	}
}

func TestMapRow_DurationWithoutPeriods(t *testing.T) {
	t.Parallel()

	hm := NewHeaderMap([]string{"projeto", "cidade", "valor_total", "duracao_contrato"})
	tw, err := MapRow([]string{"Torre", "Recife", "100000", "25"}, 1, hm)
	require.NoError(t, err)

	assert.Equal(t, 25, tw.Contract.Duration)
	assert.Equal(t, FieldPeriods.Text, tw.Contract.Periods)
	assert.Contains(t, tw.Missing, "contract.periods")
	assert.NotContains(t, tw.Missing, "contract.duration")
}

func TestMapRow_AllColumns(t *testing.T) {
	t.Parallel()

	header := []string{
		"Nome", "Cidade", "UF", "Latitude", "Longitude",
		"valor_total_investimento", "valor_terreno", "estrutura", "equipamentos", "outras_despesas", "local",
		"remuneracao_mensal", "remuneracao_anual", "fee_operador", "valor_total_contrato", "ROI_%",
		"periodos", "payback", "lucratividade_%",
		"cagr_%", "mercado_principal", "regiao_crescimento", "ano_atual", "ano_projetado",
		"valor_mercado_atual", "valor_mercado_projetado", "imagem_terreno_url", "imagem_torre_url",
	}
	row := []string{
		"Torre Recife", "Recife", "PE", "-8,0476", "-34,8770",
		"R$ 300.000,00", "R$ 180.000,00", "R$ 70.000,00", "R$ 40.000,00", "R$ 10.000,00", "Área urbana",
		"R$ 3.500,00", "R$ 42.000,00", "R$ 90.000,00", "R$ 1.260.000,00", "420,00%",
		"10 + 10 + 10 anos", "72", "81,5%",
		"7,84", "Ásia", "América do Norte", "2024", "2029",
		"7,1", "12,5", "https://img/terreno.png", "https://img/torre.png",
	}

	tw, err := MapRow(row, 7, NewHeaderMap(header))
	require.NoError(t, err)

	assert.True(t, tw.Complete(), "missing: %v", tw.Missing)
	assert.Equal(t, "tower-7", tw.ID)
	assert.Equal(t, "Recife - PE", tw.Location)
	assert.InDelta(t, -8.0476, tw.Coordinates.Lat, 1e-9)
	assert.InDelta(t, -34.877, tw.Coordinates.Lng, 1e-9)
	assert.Equal(t, model.Investment{
		Total: 300000, Land: 180000, Structure: 70000, Equipment: 40000, Other: 10000,
		LocationDetails: "Área urbana",
	}, tw.Investment)
	assert.InDelta(t, 42000, tw.Returns.Annual, 1e-9)
	assert.InDelta(t, 420, tw.Returns.ROI, 1e-9)
	assert.Equal(t, 30, tw.Contract.Duration)
	assert.Equal(t, "10 + 10 + 10", tw.Contract.Periods)
	assert.InDelta(t, 81.5, tw.Contract.ExpiryLucrativePercentage, 1e-9)
	assert.Equal(t, 2029, tw.Market.ProjectedYear)
	assert.Equal(t, "https://img/torre.png", tw.Images.Tower)
}

func TestMapRow_AnnualDerivedFromMonthly(t *testing.T) {
	t.Parallel()

	hm := NewHeaderMap([]string{"projeto", "cidade", "valor_total", "retorno_mensal"})
	tw, err := MapRow([]string{"Torre", "Recife", "100000", "2500"}, 1, hm)
	require.NoError(t, err)

	assert.InDelta(t, 30000, tw.Returns.Annual, 1e-9)
	assert.NotContains(t, tw.Missing, "returns.annual")
}

func TestMapRow_OutOfRangeCoordinatesUseDefaultPoint(t *testing.T) {
	t.Parallel()

	hm := NewHeaderMap([]string{"projeto", "valor_total", "latitude", "longitude"})

	tw, err := MapRow([]string{"Torre", "100000", "-8,0476", "-348770"}, 1, hm)
	require.NoError(t, err)
	assert.InDelta(t, DefaultLat, tw.Coordinates.Lat, 1e-9)
	assert.InDelta(t, DefaultLng, tw.Coordinates.Lng, 1e-9)
	assert.Contains(t, tw.Missing, "coordinates.lat")
	assert.Contains(t, tw.Missing, "coordinates.lng")

	tw, err = MapRow([]string{"Torre", "100000", "-8,0476", "-34,877"}, 2, hm)
	require.NoError(t, err)
	assert.InDelta(t, -34.877, tw.Coordinates.Lng, 1e-9)
	assert.NotContains(t, tw.Missing, "coordinates.lat")
}

func TestMapGrid_LegacyPositionalSheet(t *testing.T) {
	t.Parallel()

	grid := [][]string{
		{"A", "B", "C", "D", "E", "F"},
		{"Torre Legacy", "Campinas - SP", "-22,9", "-47,06", "231000", "150400"},
	}

	res := MapGrid(grid)
	assert.True(t, res.Legacy)
	require.Len(t, res.Towers, 1)

	tw := res.Towers[0]
	assert.Equal(t, "Torre Legacy", tw.Name)
	assert.Equal(t, "Campinas - SP", tw.Location)
	assert.InDelta(t, -22.9, tw.Coordinates.Lat, 1e-9)
	assert.InDelta(t, 231000, tw.Investment.Total, 1e-9)
	assert.InDelta(t, 150400, tw.Investment.Land, 1e-9)
}

func TestMapGrid_ModernSheetIgnoresPositions(t *testing.T) {
	t.Parallel()

	res := MapGrid([][]string{
		{"projeto", "cidade", "estado", "valor_total_investimento"},
		{"Torre X", "Recife", "PE", "500000"},
	})
	require.Len(t, res.Towers, 1)
	// Column 3 holds the investment; it must not leak into longitude.
	assert.InDelta(t, DefaultLng, res.Towers[0].Coordinates.Lng, 1e-9)
}

func TestPeriodYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"10 + 10 + 10", 30, true},
		{"10+5", 15, true},
		{"20 anos", 20, true},
		{"1 ano", 1, true},
		{"12 Years", 12, true},
		{"20", 20, true},
		{"", 0, false},
		{"renovável", 0, false},
	}
	for _, tt := range tests {
		got, ok := PeriodYears(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestStripYearSuffix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "20", StripYearSuffix("20 anos"))
	assert.Equal(t, "10 + 10 + 10", StripYearSuffix("10 + 10 + 10 anos"))
	assert.Equal(t, "10 + 10", StripYearSuffix(" 10 + 10 "))
}
