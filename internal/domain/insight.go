package domain

import "slices"

// BusinessInsight is the synthesized record served to clients and stored in
// both the TTL cache and the record store.
type BusinessInsight struct {
	BusinessName      string            `json:"businessName"`
	InitialInvestment InitialInvestment `json:"initialInvestment"`
	RequiredEquipment []Equipment       `json:"requiredEquipment"`
	LocationStrategy  LocationStrategy  `json:"locationStrategy"`
	Licenses          []string          `json:"licenses"`
	RevenuePotential  RevenuePotential  `json:"revenuePotential"`
	DigitalServices   []DigitalService  `json:"digitalServices"`
	YoutubeVideo      string            `json:"youtubeVideo"`
	BusinessThumbnail string            `json:"businessThumbnail"`
}

// InitialInvestment holds display strings such as "₹50,000 - ₹2,00,000".
type InitialInvestment struct {
	StartupCost            string `json:"startupCost"`
	MonthlyOperationalCost string `json:"monthlyOperationalCost"`
}

type Equipment struct {
	Item          string `json:"item"`
	EstimatedCost string `json:"estimatedCost"`
	SearchKeyword string `json:"searchKeyword"`
}

type LocationStrategy struct {
	BestLocations []string `json:"bestLocations"`
	FootTraffic   string   `json:"footTraffic"`
	Competition   string   `json:"competition"`
}

type RevenuePotential struct {
	DailySales   string `json:"dailySales"`
	MonthlySales string `json:"monthlySales"`
}

type DigitalService struct {
	Service       string `json:"service"`
	EstimatedCost string `json:"estimatedCost"`
}

// Clone returns a deep copy; callers sharing one synthesis each get their own.
func (b *BusinessInsight) Clone() *BusinessInsight {
	if b == nil {
		return nil
	}
	out := *b
	out.RequiredEquipment = slices.Clone(b.RequiredEquipment)
	out.Licenses = slices.Clone(b.Licenses)
	out.DigitalServices = slices.Clone(b.DigitalServices)
	out.LocationStrategy.BestLocations = slices.Clone(b.LocationStrategy.BestLocations)
	return &out
}
