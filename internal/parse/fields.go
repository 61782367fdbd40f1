package parse

// Field describes where one tower field lives in a sheet row and what value
// stands in when the sheet has none.
type Field struct {
	Path       string   // domain path, e.g. "investment.total"
	Candidates []string // accepted header spellings, most preferred first
	Legacy     int      // column in positional sheets without headers; -1 if none
	Text       string   // default for text fields
	Number     float64  // default for numeric fields
}

// PlaceholderImage is shown when a tower has no picture.
const PlaceholderImage = "/lovable-uploads/212f763a-68d2-4f3e-86a6-98e55844987b.png"

// DefaultLocation is used when neither city/state nor a location column is set.
const DefaultLocation = "Localização não especificada"

// Fallback point (São Paulo) for towers without usable coordinates.
const (
	DefaultLat = -23.5505
	DefaultLng = -46.6333
)

var (
	FieldName     = Field{Path: "name", Candidates: []string{"nome", "projeto", "nome_projeto", "torre"}, Legacy: 0}
	FieldCity     = Field{Path: "location.city", Candidates: []string{"cidade", "city"}, Legacy: -1}
	FieldState    = Field{Path: "location.state", Candidates: []string{"estado", "state", "uf"}, Legacy: -1}
	FieldLocation = Field{Path: "location", Candidates: []string{"localizacao_torre", "location"}, Legacy: 1, Text: DefaultLocation}
	FieldLat      = Field{Path: "coordinates.lat", Candidates: []string{"latitude", "lat"}, Legacy: 2, Number: DefaultLat}
	FieldLng      = Field{Path: "coordinates.lng", Candidates: []string{"longitude", "lng", "long"}, Legacy: 3, Number: DefaultLng}

	FieldInvestmentTotal = Field{Path: "investment.total", Candidates: []string{"valor_total_investimento", "investimento_total", "valor_total", "total"}, Legacy: 4}
	FieldLand            = Field{Path: "investment.land", Candidates: []string{"valor_terreno", "terreno", "custo_terreno"}, Legacy: 5, Number: 150400}
	FieldStructure       = Field{Path: "investment.structure", Candidates: []string{"estrutura", "valor_estrutura", "custo_estrutura"}, Legacy: 6, Number: 51000}
	FieldEquipment       = Field{Path: "investment.equipment", Candidates: []string{"equipamentos", "valor_equipamentos", "custo_equipamentos"}, Legacy: 7, Number: 30000}
	FieldOther           = Field{Path: "investment.other", Candidates: []string{"outras_despesas", "outros_custos", "despesas_adicionais"}, Legacy: 8}
	FieldLocationDetails = Field{Path: "investment.locationDetails", Candidates: []string{"local", "detalhes_local", "localização"}, Legacy: 9, Text: "Local pronto para implantação"}

	FieldMonthly            = Field{Path: "returns.monthly", Candidates: []string{"remuneracao_mensal", "retorno_mensal"}, Legacy: 10, Number: 3000}
	FieldAnnual             = Field{Path: "returns.annual", Candidates: []string{"remuneracao_anual", "retorno_anual"}, Legacy: -1, Number: 36000}
	FieldOperatorFee        = Field{Path: "returns.operatorFee", Candidates: []string{"fee_operador", "taxa_operador"}, Legacy: 11, Number: 80800}
	FieldTotalContractValue = Field{Path: "returns.totalContractValue", Candidates: []string{"valor_total_contrato", "contrato_valor_total"}, Legacy: 12, Number: 1080000}
	FieldROI                = Field{Path: "returns.roi", Candidates: []string{"roi_%", "rentabilidade_%", "rentabilidade_total_%"}, Legacy: 13, Number: 467.53}

	FieldDuration        = Field{Path: "contract.duration", Candidates: []string{"duracao_contrato", "periodo_contrato", "duracao"}, Legacy: 14, Number: 30}
	FieldPeriods         = Field{Path: "contract.periods", Candidates: []string{"periodos", "renovacao"}, Legacy: 15, Text: "10 + 10 + 10"}
	FieldPayback         = Field{Path: "contract.payback", Candidates: []string{"payback", "periodo_retorno"}, Legacy: 16, Number: 77}
	FieldExpiryLucrative = Field{Path: "contract.expiryLucrativePercentage", Candidates: []string{"lucratividade_expiracao", "lucratividade_%"}, Legacy: 17, Number: 80.26}

	FieldCAGR           = Field{Path: "market.cagr", Candidates: []string{"cagr_%", "taxa_crescimento_%"}, Legacy: 18, Number: 7.84}
	FieldTopMarket      = Field{Path: "market.topMarket", Candidates: []string{"mercado_principal", "maior_mercado"}, Legacy: 19, Text: "América do Norte e Ásia Pacífico"}
	FieldGrowthRegion   = Field{Path: "market.growthRegion", Candidates: []string{"regiao_crescimento", "regiao_crescimento_rapido"}, Legacy: 20, Text: "América do Norte e Ásia Pacífico"}
	FieldCurrentYear    = Field{Path: "market.currentYear", Candidates: []string{"ano_atual"}, Legacy: 21, Number: 2024}
	FieldProjectedYear  = Field{Path: "market.projectedYear", Candidates: []string{"ano_projetado"}, Legacy: 22, Number: 2029}
	FieldCurrentValue   = Field{Path: "market.currentValue", Candidates: []string{"valor_mercado_atual", "mercado_atual_usd"}, Legacy: 23, Number: 7.1}
	FieldProjectedValue = Field{Path: "market.projectedValue", Candidates: []string{"valor_mercado_projetado", "mercado_projetado_usd"}, Legacy: 24, Number: 12.5}

	FieldLocationImage = Field{Path: "images.location", Candidates: []string{"imagem_terreno_url", "url_imagem_terreno"}, Legacy: 25, Text: PlaceholderImage}
	FieldTowerImage    = Field{Path: "images.tower", Candidates: []string{"imagem_torre_url", "url_imagem_torre"}, Legacy: 26, Text: PlaceholderImage}
)

// Fields is the full mapping table, in sheet-column order of the legacy layout.
var Fields = []Field{
	FieldName, FieldCity, FieldState, FieldLocation, FieldLat, FieldLng,
	FieldInvestmentTotal, FieldLand, FieldStructure, FieldEquipment, FieldOther, FieldLocationDetails,
	FieldMonthly, FieldAnnual, FieldOperatorFee, FieldTotalContractValue, FieldROI,
	FieldDuration, FieldPeriods, FieldPayback, FieldExpiryLucrative,
	FieldCAGR, FieldTopMarket, FieldGrowthRegion, FieldCurrentYear, FieldProjectedYear, FieldCurrentValue, FieldProjectedValue,
	FieldLocationImage, FieldTowerImage,
}
