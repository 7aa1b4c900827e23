package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxPriceCeiling is the upper bound of the price slider; a MaxPrice at or
// above it means "no upper price constraint".
const MaxPriceCeiling = 100_000_000

// SearchCriteria is an optional, independently-toggleable filter set. A nil
// field means "no constraint on this dimension"; a nil *SearchCriteria means
// "all listings".
type SearchCriteria struct {
	Status       *PropertyStatus `json:"status,omitempty"`
	PropertyType *PropertyType   `json:"property_type,omitempty"`
	City         *string         `json:"city,omitempty"`
	Area         *string         `json:"area,omitempty"`
	MinBedrooms  *int64          `json:"min_bedrooms,omitempty"`
	MinBathrooms *int64          `json:"min_bathrooms,omitempty"`
	MinPrice     *int64          `json:"min_price,omitempty"`
	MaxPrice     *int64          `json:"max_price,omitempty"`
}

// RawCriteria is criteria as submitted by a client, with "unset" sentinels
// still present: empty strings, zeros, and a MaxPrice at the slider ceiling.
type RawCriteria struct {
	Status       string
	PropertyType string
	City         string
	Area         string
	MinBedrooms  int64
	MinBathrooms int64
	MinPrice     int64
	MaxPrice     int64
}

// BuildCriteria turns raw client input into a criteria set, omitting every
// field left at its unset sentinel. When nothing remains it returns nil,
// meaning the unfiltered collection.
func BuildCriteria(raw RawCriteria) *SearchCriteria {
	c := &SearchCriteria{}

	if raw.Status != "" {
		s := PropertyStatus(raw.Status)
		c.Status = &s
	}
	if raw.PropertyType != "" {
		t := PropertyType(raw.PropertyType)
		c.PropertyType = &t
	}
	if city := strings.TrimSpace(raw.City); city != "" {
		c.City = &city
	}
	if area := strings.TrimSpace(raw.Area); area != "" {
		c.Area = &area
	}
	if raw.MinBedrooms > 0 {
		v := raw.MinBedrooms
		c.MinBedrooms = &v
	}
	if raw.MinBathrooms > 0 {
		v := raw.MinBathrooms
		c.MinBathrooms = &v
	}
	if raw.MinPrice > 0 {
		v := raw.MinPrice
		c.MinPrice = &v
	}
	if raw.MaxPrice > 0 && raw.MaxPrice < MaxPriceCeiling {
		v := raw.MaxPrice
		c.MaxPrice = &v
	}

	if c.IsEmpty() {
		return nil
	}
	return c
}

// IsEmpty reports whether no constraint is present.
func (c *SearchCriteria) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.Status == nil && c.PropertyType == nil && c.City == nil && c.Area == nil &&
		c.MinBedrooms == nil && c.MinBathrooms == nil && c.MinPrice == nil && c.MaxPrice == nil
}

// Matches reports whether p satisfies every present constraint. It is a pure
// filter: all constraints combine with AND, string comparisons are exact and
// case-sensitive, and an absent criteria set matches everything.
func (c *SearchCriteria) Matches(p *Property) bool {
	if c == nil {
		return true
	}
	if c.Status != nil && p.Status != *c.Status {
		return false
	}
	if c.PropertyType != nil && p.PropertyType != *c.PropertyType {
		return false
	}
	if c.City != nil && p.Location.City != *c.City {
		return false
	}
	if c.Area != nil && p.Location.Area != *c.Area {
		return false
	}
	if c.MinBedrooms != nil && p.Bedrooms < *c.MinBedrooms {
		return false
	}
	if c.MinBathrooms != nil && p.Bathrooms < *c.MinBathrooms {
		return false
	}
	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}
	return true
}

// Filter returns the listings of in that satisfy the criteria, preserving order.
func (c *SearchCriteria) Filter(in []*Property) []*Property {
	if c.IsEmpty() {
		return in
	}
	out := make([]*Property, 0, len(in))
	for _, p := range in {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// CacheKey returns a canonical serialization of the criteria for use as a
// cache key discriminator. Field order is fixed so identical criteria always
// produce identical keys.
func (c *SearchCriteria) CacheKey() string {
	if c.IsEmpty() {
		return "null"
	}

	parts := make([]string, 0, 8)
	if c.Status != nil {
		parts = append(parts, "status="+string(*c.Status))
	}
	if c.PropertyType != nil {
		parts = append(parts, "type="+string(*c.PropertyType))
	}
	if c.City != nil {
		parts = append(parts, "city="+*c.City)
	}
	if c.Area != nil {
		parts = append(parts, "area="+*c.Area)
	}
	if c.MinBedrooms != nil {
		parts = append(parts, fmt.Sprintf("minbed=%d", *c.MinBedrooms))
	}
	if c.MinBathrooms != nil {
		parts = append(parts, fmt.Sprintf("minbath=%d", *c.MinBathrooms))
	}
	if c.MinPrice != nil {
		parts = append(parts, fmt.Sprintf("minprice=%d", *c.MinPrice))
	}
	if c.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("maxprice=%d", *c.MaxPrice))
	}
	return strings.Join(parts, "&")
}

// String implements fmt.Stringer for log output.
func (c *SearchCriteria) String() string {
	if c.IsEmpty() {
		return "{}"
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(data)
}
