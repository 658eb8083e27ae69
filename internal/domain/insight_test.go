package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneIsIndependent(t *testing.T) {
	orig := &BusinessInsight{
		BusinessName:      "Tea Stall",
		RequiredEquipment: []Equipment{{Item: "Kettle", EstimatedCost: "₹1,500"}},
		LocationStrategy:  LocationStrategy{BestLocations: []string{"Bus stand"}},
		Licenses:          []string{"FSSAI"},
		DigitalServices:   []DigitalService{{Service: "UPI"}},
	}

	cp := orig.Clone()
	assert.Equal(t, orig, cp)

	cp.RequiredEquipment[0].Item = "Stove"
	cp.LocationStrategy.BestLocations[0] = "Market"
	cp.Licenses[0] = "GST"
	cp.DigitalServices[0].Service = "Website"

	assert.Equal(t, "Kettle", orig.RequiredEquipment[0].Item)
	assert.Equal(t, "Bus stand", orig.LocationStrategy.BestLocations[0])
	assert.Equal(t, "FSSAI", orig.Licenses[0])
	assert.Equal(t, "UPI", orig.DigitalServices[0].Service)
}

func TestCloneKeepsEmptyAndNilSlices(t *testing.T) {
	orig := &BusinessInsight{Licenses: []string{}}

	cp := orig.Clone()
	assert.NotNil(t, cp.Licenses)
	assert.Empty(t, cp.Licenses)
	assert.Nil(t, cp.RequiredEquipment)

	var none *BusinessInsight
	assert.Nil(t, none.Clone())
}
