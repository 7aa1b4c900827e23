package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gharbazaar/backend/internal/domain/entities"
)

func listing(city, area string, beds, baths, price int64) *entities.Property {
	return &entities.Property{
		Title:        "Listing",
		PropertyType: entities.TypeApartment,
		Status:       entities.StatusAvailable,
		Price:        price,
		Bedrooms:     beds,
		Bathrooms:    baths,
		Location:     entities.Location{City: city, Area: area},
	}
}

func TestBuildCriteria_SentinelsCollapseToNil(t *testing.T) {
	criteria := entities.BuildCriteria(entities.RawCriteria{
		City:     "",
		MinPrice: 0,
		MaxPrice: entities.MaxPriceCeiling,
	})

	assert.Nil(t, criteria)
	assert.True(t, criteria.IsEmpty())
}

func TestBuildCriteria_CeilingMaxPriceMeansUnbounded(t *testing.T) {
	criteria := entities.BuildCriteria(entities.RawCriteria{
		City:     "Mumbai",
		MaxPrice: entities.MaxPriceCeiling,
	})

	assert.NotNil(t, criteria)
	assert.Nil(t, criteria.MaxPrice)
	assert.Equal(t, "Mumbai", *criteria.City)
}

func TestBuildCriteria_TrimsWhitespace(t *testing.T) {
	criteria := entities.BuildCriteria(entities.RawCriteria{City: "  Pune "})

	assert.NotNil(t, criteria)
	assert.Equal(t, "Pune", *criteria.City)
}

func TestMatches_NilCriteriaMatchesEverything(t *testing.T) {
	var criteria *entities.SearchCriteria

	assert.True(t, criteria.Matches(listing("Mumbai", "Bandra West", 3, 2, 25_000_000)))
	assert.True(t, criteria.Matches(listing("Pune", "Kothrud", 1, 1, 4_000_000)))
}

func TestMatches_AllConstraintsAndTogether(t *testing.T) {
	criteria := entities.BuildCriteria(entities.RawCriteria{
		City:        "Mumbai",
		MinBedrooms: 2,
		MinPrice:    10_000_000,
		MaxPrice:    30_000_000,
	})

	assert.True(t, criteria.Matches(listing("Mumbai", "Bandra West", 3, 2, 25_000_000)))

	// Fails one dimension each
	assert.False(t, criteria.Matches(listing("Pune", "Bandra West", 3, 2, 25_000_000)))
	assert.False(t, criteria.Matches(listing("Mumbai", "Bandra West", 1, 2, 25_000_000)))
	assert.False(t, criteria.Matches(listing("Mumbai", "Bandra West", 3, 2, 5_000_000)))
	assert.False(t, criteria.Matches(listing("Mumbai", "Bandra West", 3, 2, 35_000_000)))
}

func TestMatches_StringComparisonIsExactAndCaseSensitive(t *testing.T) {
	criteria := entities.BuildCriteria(entities.RawCriteria{City: "Mumbai"})

	assert.True(t, criteria.Matches(listing("Mumbai", "Andheri", 2, 1, 8_000_000)))
	assert.False(t, criteria.Matches(listing("mumbai", "Andheri", 2, 1, 8_000_000)))
	assert.False(t, criteria.Matches(listing("Navi Mumbai", "Andheri", 2, 1, 8_000_000)))
}

func TestMatches_PriceBoundsAreInclusive(t *testing.T) {
	criteria := entities.BuildCriteria(entities.RawCriteria{
		MinPrice: 10_000_000,
		MaxPrice: 20_000_000,
	})

	assert.True(t, criteria.Matches(listing("Mumbai", "Andheri", 2, 1, 10_000_000)))
	assert.True(t, criteria.Matches(listing("Mumbai", "Andheri", 2, 1, 20_000_000)))
	assert.False(t, criteria.Matches(listing("Mumbai", "Andheri", 2, 1, 9_999_999)))
	assert.False(t, criteria.Matches(listing("Mumbai", "Andheri", 2, 1, 20_000_001)))
}

func TestMatches_StatusAndType(t *testing.T) {
	criteria := entities.BuildCriteria(entities.RawCriteria{
		Status:       string(entities.StatusAvailable),
		PropertyType: string(entities.TypeVilla),
	})

	villa := listing("Pune", "Baner", 4, 3, 40_000_000)
	villa.PropertyType = entities.TypeVilla

	assert.True(t, criteria.Matches(villa))

	sold := *villa
	sold.Status = entities.StatusSold
	assert.False(t, criteria.Matches(&sold))

	plot := *villa
	plot.PropertyType = entities.TypePlot
	assert.False(t, criteria.Matches(&plot))
}

func TestFilter_PreservesOrder(t *testing.T) {
	a := listing("Mumbai", "Bandra West", 3, 2, 25_000_000)
	b := listing("Pune", "Kothrud", 2, 1, 6_000_000)
	c := listing("Mumbai", "Andheri", 2, 1, 12_000_000)

	criteria := entities.BuildCriteria(entities.RawCriteria{City: "Mumbai"})
	out := criteria.Filter([]*entities.Property{a, b, c})

	assert.Equal(t, []*entities.Property{a, c}, out)
}

func TestFilter_EmptyCriteriaReturnsInput(t *testing.T) {
	in := []*entities.Property{
		listing("Mumbai", "Bandra West", 3, 2, 25_000_000),
		listing("Pune", "Kothrud", 2, 1, 6_000_000),
	}

	var criteria *entities.SearchCriteria
	assert.Equal(t, in, criteria.Filter(in))
}

func TestCacheKey_Canonical(t *testing.T) {
	first := entities.BuildCriteria(entities.RawCriteria{City: "Mumbai", MinBedrooms: 2})
	second := entities.BuildCriteria(entities.RawCriteria{MinBedrooms: 2, City: "Mumbai"})

	assert.Equal(t, first.CacheKey(), second.CacheKey())
	assert.NotEqual(t, first.CacheKey(), entities.BuildCriteria(entities.RawCriteria{City: "Pune", MinBedrooms: 2}).CacheKey())
}

func TestCacheKey_EmptyCriteria(t *testing.T) {
	var criteria *entities.SearchCriteria
	assert.Equal(t, "null", criteria.CacheKey())

	collapsed := entities.BuildCriteria(entities.RawCriteria{MaxPrice: entities.MaxPriceCeiling})
	assert.Equal(t, "null", collapsed.CacheKey())
}
