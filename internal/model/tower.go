// Package model defines tower investment records.
package model

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Investment is the capital breakdown of a tower project.
type Investment struct {
	Total           float64 `json:"total"`
	Land            float64 `json:"land"`
	Structure       float64 `json:"structure"`
	Equipment       float64 `json:"equipment"`
	Other           float64 `json:"other"`
	LocationDetails string  `json:"locationDetails"`
}

// Returns holds the income figures paid by the operator.
type Returns struct {
	Monthly            float64 `json:"monthly"`
	Annual             float64 `json:"annual"`
	OperatorFee        float64 `json:"operatorFee"`
	TotalContractValue float64 `json:"totalContractValue"`
	ROI                float64 `json:"roi"` // percent
}

// Contract describes the lease terms with the operator.
type Contract struct {
	Duration                  int     `json:"duration"` // years
	Periods                   string  `json:"periods"`  // renewal schedule, e.g. "10 + 10 + 10"
	Payback                   float64 `json:"payback"`  // months
	ExpiryLucrativePercentage float64 `json:"expiryLucrativePercentage"`
}

// Market holds tower-market sizing figures shown next to the asset.
type Market struct {
	CAGR           float64 `json:"cagr"`
	TopMarket      string  `json:"topMarket"`
	GrowthRegion   string  `json:"growthRegion"`
	CurrentYear    int     `json:"currentYear"`
	ProjectedYear  int     `json:"projectedYear"`
	CurrentValue   float64 `json:"currentValue"`
	ProjectedValue float64 `json:"projectedValue"`
}

// Images references the pictures of the site and the tower.
type Images struct {
	Location string `json:"location"`
	Tower    string `json:"tower"`
}

// Tower is one investable tower asset.
type Tower struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates"`
	Investment  Investment  `json:"investment"`
	Returns     Returns     `json:"returns"`
	Contract    Contract    `json:"contract"`
	Market      Market      `json:"market"`
	Images      Images      `json:"images"`
	Source      Source      `json:"source,omitempty"`

	// Missing lists the field paths (e.g. "investment.land") whose value
	// was substituted by a default because the sheet had no usable cell.
	Missing []string `json:"missing,omitempty"`
}

// Complete reports whether every field was read from the source data.
func (t Tower) Complete() bool {
	return len(t.Missing) == 0
}

// Valid reports whether the tower carries the minimum data to be shown.
func (t Tower) Valid() bool {
	return t.Name != "" && t.Investment.Total > 0
}

// FindTower returns the tower with the given id, or nil.
func FindTower(towers []Tower, id string) *Tower {
	for i := range towers {
		if towers[i].ID == id {
			return &towers[i]
		}
	}
	return nil
}
