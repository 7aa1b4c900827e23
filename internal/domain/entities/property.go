package entities

import (
	"time"

	apperrors "github.com/gharbazaar/backend/pkg/errors"
)

// PropertyStatus is the lifecycle status of a listing
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusPending   PropertyStatus = "pending"
	StatusSold      PropertyStatus = "sold"
)

// PropertyType is the kind of property being listed
type PropertyType string

const (
	TypeHouse     PropertyType = "house"
	TypeVilla     PropertyType = "villa"
	TypePlot      PropertyType = "plot"
	TypeApartment PropertyType = "apartment"
)

// ValidStatus reports whether s is a known property status
func ValidStatus(s PropertyStatus) bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold:
		return true
	}
	return false
}

// ValidType reports whether t is a known property type
func ValidType(t PropertyType) bool {
	switch t {
	case TypeHouse, TypeVilla, TypePlot, TypeApartment:
		return true
	}
	return false
}

// Location is where a listing is situated
type Location struct {
	City string `json:"city" db:"city"`
	Area string `json:"area" db:"area"`
}

// SellerContact is how a buyer reaches the seller
type SellerContact struct {
	Name  string `json:"name" db:"seller_name"`
	Phone string `json:"phone" db:"seller_phone"`
	Email string `json:"email" db:"seller_email"`
}

// MediaRef points to an uploaded image in the object store
type MediaRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Property represents a single listing. Timestamps are assigned by the
// submitting client, not by the server; the server only validates them.
type Property struct {
	ID            int64          `json:"id" db:"id"`
	Owner         string         `json:"owner" db:"owner"`
	Title         string         `json:"title" db:"title"`
	Description   string         `json:"description" db:"description"`
	PropertyType  PropertyType   `json:"property_type" db:"property_type"`
	Status        PropertyStatus `json:"status" db:"status"`
	Price         int64          `json:"price" db:"price"`
	Bedrooms      int64          `json:"bedrooms" db:"bedrooms"`
	Bathrooms     int64          `json:"bathrooms" db:"bathrooms"`
	SquareFootage int64          `json:"square_footage" db:"square_footage"`
	Location      Location       `json:"location" db:"-"`
	SellerContact SellerContact  `json:"seller_contact" db:"-"`
	Images        []MediaRef     `json:"images" db:"-"`
	Amenities     []string       `json:"amenities" db:"-"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	ListingDate   time.Time      `json:"listing_date" db:"listing_date"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// Validate checks the listing invariants. Ownership and id immutability are
// enforced by the service layer, not here.
func (p *Property) Validate() error {
	if p.Title == "" {
		return apperrors.NewValidationError("title is required")
	}
	if !ValidType(p.PropertyType) {
		return apperrors.NewValidationError("unknown property type: " + string(p.PropertyType))
	}
	if !ValidStatus(p.Status) {
		return apperrors.NewValidationError("unknown property status: " + string(p.Status))
	}
	if p.Price < 0 || p.Bedrooms < 0 || p.Bathrooms < 0 || p.SquareFootage < 0 {
		return apperrors.NewValidationError("numeric fields must be non-negative")
	}
	if p.Location.City == "" || p.Location.Area == "" {
		return apperrors.NewValidationError("city and area are required")
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		return apperrors.NewValidationError("updated_at must not precede created_at")
	}

	seen := make(map[string]struct{}, len(p.Amenities))
	for _, a := range p.Amenities {
		if _, dup := seen[a]; dup {
			return apperrors.NewValidationError("duplicate amenity: " + a)
		}
		seen[a] = struct{}{}
	}

	return nil
}
