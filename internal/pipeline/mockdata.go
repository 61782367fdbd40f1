package pipeline

import (
	"github.com/sells-group/towerdash/internal/model"
	"github.com/sells-group/towerdash/internal/parse"
)

// MockTowers returns the demonstration batch served when neither the sheet
// nor the cache can provide data. Every call returns fresh copies.
func MockTowers() []model.Tower {
	market := model.Market{
		CAGR:           7.84,
		TopMarket:      "América do Norte e Ásia Pacífico",
		GrowthRegion:   "América do Norte e Ásia Pacífico",
		CurrentYear:    2020,
		ProjectedYear:  2028,
		CurrentValue:   7.1,
		ProjectedValue: 12.5,
	}
	images := model.Images{Location: parse.PlaceholderImage, Tower: parse.PlaceholderImage}

	return []model.Tower{
		{
			ID:          "tower-1",
			Name:        "Torre São Paulo",
			Location:    "São Paulo, SP",
			Coordinates: model.Coordinates{Lat: -23.5505, Lng: -46.6333},
			Investment: model.Investment{
				Total:           231000,
				Land:            150400,
				Structure:       51000,
				Equipment:       30000,
				LocationDetails: "Local pronto para implantação",
			},
			Returns: model.Returns{
				Monthly:            3000,
				Annual:             36000,
				OperatorFee:        80800,
				TotalContractValue: 1080000,
				ROI:                467.53,
			},
			Contract: model.Contract{
				Duration:                  30,
				Periods:                   "10 + 10 + 10",
				Payback:                   77,
				ExpiryLucrativePercentage: 80.26,
			},
			Market: market,
			Images: images,
			Source: model.SourceMock,
		},
		{
			ID:          "tower-2",
			Name:        "Torre Rio de Janeiro",
			Location:    "Rio de Janeiro, RJ",
			Coordinates: model.Coordinates{Lat: -22.9068, Lng: -43.1729},
			Investment: model.Investment{
				Total:           250000,
				Land:            160000,
				Structure:       55000,
				Equipment:       35000,
				LocationDetails: "Local pronto para implantação",
			},
			Returns: model.Returns{
				Monthly:            3500,
				Annual:             42000,
				OperatorFee:        85000,
				TotalContractValue: 1260000,
				ROI:                504,
			},
			Contract: model.Contract{
				Duration:                  30,
				Periods:                   "10 + 10 + 10",
				Payback:                   72,
				ExpiryLucrativePercentage: 82.5,
			},
			Market: market,
			Images: images,
			Source: model.SourceMock,
		},
	}
}
