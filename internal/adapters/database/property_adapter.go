package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/domain/repositories"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/gharbazaar/backend/pkg/errors"
)

const propertiesTable = "properties"

var propertyColumns = []interface{}{
	"id", "owner", "title", "description", "property_type", "status",
	"price", "bedrooms", "bathrooms", "square_footage", "city", "area",
	"seller_name", "seller_phone", "seller_email", "images", "amenities",
	"created_at", "listing_date", "updated_at",
}

// PropertyAdapter implements the PropertyRepository interface on Postgres
type PropertyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPropertyAdapter creates a new property adapter
func NewPropertyAdapter(client *postgres.Client) repositories.PropertyRepository {
	return &PropertyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new listing and returns the id the database assigned
func (a *PropertyAdapter) Create(ctx context.Context, property *entities.Property) (int64, error) {
	images, err := json.Marshal(property.Images)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to encode images", err)
	}
	amenities, err := json.Marshal(property.Amenities)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to encode amenities", err)
	}

	query := `
		INSERT INTO properties (
			owner, title, description, property_type, status,
			price, bedrooms, bathrooms, square_footage, city, area,
			seller_name, seller_phone, seller_email, images, amenities,
			created_at, listing_date, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`

	var id int64
	err = a.client.DB().QueryRowContext(ctx, query,
		property.Owner,
		property.Title,
		property.Description,
		property.PropertyType,
		property.Status,
		property.Price,
		property.Bedrooms,
		property.Bathrooms,
		property.SquareFootage,
		property.Location.City,
		property.Location.Area,
		property.SellerContact.Name,
		property.SellerContact.Phone,
		property.SellerContact.Email,
		images,
		amenities,
		property.CreatedAt,
		property.ListingDate,
		property.UpdatedAt,
	).Scan(&id)

	if err != nil {
		return 0, apperrors.NewInternalError("failed to create property", err)
	}

	property.ID = id
	return id, nil
}

// GetByID retrieves a listing by id
func (a *PropertyAdapter) GetByID(ctx context.Context, id int64) (*entities.Property, error) {
	query, args, err := a.db.From(propertiesTable).
		Select(propertyColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build property query", err)
	}

	property, err := scanProperty(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("property with id %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get property", err)
	}

	return property, nil
}

// GetByIDs retrieves multiple listings by their ids
func (a *PropertyAdapter) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Property, error) {
	if len(ids) == 0 {
		return []*entities.Property{}, nil
	}

	query, args, err := a.db.From(propertiesTable).
		Select(propertyColumns...).
		Where(goqu.C("id").In(ids)).
		Order(goqu.I("listing_date").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build properties query", err)
	}

	return a.queryProperties(ctx, query, args...)
}

// Update replaces a listing record in full
func (a *PropertyAdapter) Update(ctx context.Context, property *entities.Property) error {
	images, err := json.Marshal(property.Images)
	if err != nil {
		return apperrors.NewInternalError("failed to encode images", err)
	}
	amenities, err := json.Marshal(property.Amenities)
	if err != nil {
		return apperrors.NewInternalError("failed to encode amenities", err)
	}

	query := `
		UPDATE properties SET
			title = $2, description = $3, property_type = $4, status = $5,
			price = $6, bedrooms = $7, bathrooms = $8, square_footage = $9,
			city = $10, area = $11, seller_name = $12, seller_phone = $13,
			seller_email = $14, images = $15, amenities = $16,
			listing_date = $17, updated_at = $18
		WHERE id = $1
	`

	result, err := a.client.DB().ExecContext(ctx, query,
		property.ID,
		property.Title,
		property.Description,
		property.PropertyType,
		property.Status,
		property.Price,
		property.Bedrooms,
		property.Bathrooms,
		property.SquareFootage,
		property.Location.City,
		property.Location.Area,
		property.SellerContact.Name,
		property.SellerContact.Phone,
		property.SellerContact.Email,
		images,
		amenities,
		property.ListingDate,
		property.UpdatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to update property", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("property with id %d not found", property.ID))
	}

	return nil
}

// Delete removes a listing irreversibly
func (a *PropertyAdapter) Delete(ctx context.Context, id int64) error {
	result, err := a.client.DB().ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete property", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("property with id %d not found", id))
	}

	return nil
}

// GetAll retrieves every listing, newest first
func (a *PropertyAdapter) GetAll(ctx context.Context) ([]*entities.Property, error) {
	return a.Search(ctx, nil)
}

// GetAvailable retrieves listings with status = available
func (a *PropertyAdapter) GetAvailable(ctx context.Context) ([]*entities.Property, error) {
	status := entities.StatusAvailable
	return a.Search(ctx, &entities.SearchCriteria{Status: &status})
}

// GetByOwner retrieves listings created by the given principal
func (a *PropertyAdapter) GetByOwner(ctx context.Context, owner string) ([]*entities.Property, error) {
	query, args, err := a.db.From(propertiesTable).
		Select(propertyColumns...).
		Where(goqu.C("owner").Eq(owner)).
		Order(goqu.I("listing_date").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build owner query", err)
	}

	return a.queryProperties(ctx, query, args...)
}

// Search retrieves listings matching the criteria. Every present constraint
// becomes a WHERE clause; a nil or empty criteria set returns everything.
// String comparisons are exact and case-sensitive.
func (a *PropertyAdapter) Search(ctx context.Context, criteria *entities.SearchCriteria) ([]*entities.Property, error) {
	ds := a.db.From(propertiesTable).
		Select(propertyColumns...)

	for _, expr := range criteriaExpressions(criteria) {
		ds = ds.Where(expr)
	}

	query, args, err := ds.
		Order(goqu.I("listing_date").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}

	return a.queryProperties(ctx, query, args...)
}

// criteriaExpressions translates a criteria set into goqu expressions,
// mirroring entities.SearchCriteria.Matches clause for clause.
func criteriaExpressions(criteria *entities.SearchCriteria) []goqu.Expression {
	if criteria.IsEmpty() {
		return nil
	}

	exprs := make([]goqu.Expression, 0, 8)
	if criteria.Status != nil {
		exprs = append(exprs, goqu.C("status").Eq(string(*criteria.Status)))
	}
	if criteria.PropertyType != nil {
		exprs = append(exprs, goqu.C("property_type").Eq(string(*criteria.PropertyType)))
	}
	if criteria.City != nil {
		exprs = append(exprs, goqu.C("city").Eq(*criteria.City))
	}
	if criteria.Area != nil {
		exprs = append(exprs, goqu.C("area").Eq(*criteria.Area))
	}
	if criteria.MinBedrooms != nil {
		exprs = append(exprs, goqu.C("bedrooms").Gte(*criteria.MinBedrooms))
	}
	if criteria.MinBathrooms != nil {
		exprs = append(exprs, goqu.C("bathrooms").Gte(*criteria.MinBathrooms))
	}
	if criteria.MinPrice != nil {
		exprs = append(exprs, goqu.C("price").Gte(*criteria.MinPrice))
	}
	if criteria.MaxPrice != nil {
		exprs = append(exprs, goqu.C("price").Lte(*criteria.MaxPrice))
	}
	return exprs
}

func (a *PropertyAdapter) queryProperties(ctx context.Context, query string, args ...interface{}) ([]*entities.Property, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query properties", err)
	}
	defer rows.Close()

	properties := []*entities.Property{}
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan property", err)
		}
		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating properties", err)
	}

	return properties, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*entities.Property, error) {
	property := &entities.Property{}
	var images, amenities []byte

	err := row.Scan(
		&property.ID,
		&property.Owner,
		&property.Title,
		&property.Description,
		&property.PropertyType,
		&property.Status,
		&property.Price,
		&property.Bedrooms,
		&property.Bathrooms,
		&property.SquareFootage,
		&property.Location.City,
		&property.Location.Area,
		&property.SellerContact.Name,
		&property.SellerContact.Phone,
		&property.SellerContact.Email,
		&images,
		&amenities,
		&property.CreatedAt,
		&property.ListingDate,
		&property.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &property.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
	}
	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &property.Amenities); err != nil {
			return nil, fmt.Errorf("failed to decode amenities: %w", err)
		}
	}

	return property, nil
}
