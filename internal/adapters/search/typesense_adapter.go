package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/domain/repositories"
	tsclient "github.com/gharbazaar/backend/internal/infrastructure/clients/typesense"
)

const collectionName = "properties"

// TypesenseAdapter implements full-text listing search using Typesense.
// It only returns listing ids; hydration happens against the repository so
// search results always reflect the database, not the index.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements PropertySearchRepository
var _ repositories.PropertySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "city", Type: "string", Facet: pointer.True()},
			{Name: "area", Type: "string", Facet: pointer.True()},
			{Name: "amenities", Type: "string[]"},
			{Name: "listing_date", Type: "int64"},
		},
		DefaultSortingField: pointer.String("listing_date"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a listing document
func (a *TypesenseAdapter) Index(ctx context.Context, property *entities.Property) error {
	amenities := property.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	document := map[string]interface{}{
		"id":           strconv.FormatInt(property.ID, 10),
		"title":        property.Title,
		"description":  property.Description,
		"city":         property.Location.City,
		"area":         property.Location.Area,
		"amenities":    amenities,
		"listing_date": property.ListingDate.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index property: %w", err)
	}

	return nil
}

// Delete removes a listing from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id int64) error {
	_, err := a.client.Client().Collection(collectionName).Document(strconv.FormatInt(id, 10)).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete property from index: %w", err)
	}
	return nil
}

// Search runs a full-text query over titles, descriptions, locations and
// amenities and returns the matching listing ids, newest first.
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 50
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("title,description,city,area,amenities"),
		SortBy:  pointer.String("listing_date:desc"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	ids := []int64{}
	if result.Hits == nil {
		return ids, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		raw, ok := doc["id"].(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}
