package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gharbazaar/backend/internal/adapters/database"
	"github.com/gharbazaar/backend/internal/adapters/search"
	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/postgres"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/typesense"
	"github.com/gharbazaar/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	var searchRepo *search.TypesenseAdapter
	if err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient)
		searchRepo.InitSchema(context.Background())
	}

	propertyRepo := database.NewPropertyAdapter(pgClient)
	profileRepo := database.NewProfileAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				properties,
				user_profiles
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now().UTC()

	// 1. Seed profiles
	profiles := []entities.UserProfile{
		{Principal: "seed-admin", Name: "Site Admin", Email: "admin@gharbazaar.example", Role: entities.RoleAdmin, CreatedAt: now, UpdatedAt: now},
		{Principal: "seed-rajesh", Name: "Rajesh Kumar", Email: "rajesh@example.com", Phone: "+91-9820000001", Role: entities.RoleUser, CreatedAt: now, UpdatedAt: now},
		{Principal: "seed-priya", Name: "Priya Sharma", Email: "priya@example.com", Phone: "+91-9820000002", Role: entities.RoleUser, CreatedAt: now, UpdatedAt: now},
	}
	for _, p := range profiles {
		if err := profileRepo.Save(ctx, &p); err != nil {
			log.Printf("Failed to save profile %s: %v", p.Principal, err)
		}
	}

	// 2. Seed listings
	listings := []entities.Property{
		{
			Owner:         "seed-rajesh",
			Title:         "Modern 3BHK Apartment in Bandra West",
			Description:   "Sea-facing apartment with modular kitchen and covered parking.",
			PropertyType:  entities.TypeApartment,
			Status:        entities.StatusAvailable,
			Price:         25_000_000,
			Bedrooms:      3,
			Bathrooms:     2,
			SquareFootage: 1450,
			Location:      entities.Location{City: "Mumbai", Area: "Bandra West"},
			SellerContact: entities.SellerContact{Name: "Rajesh Kumar", Phone: "+91-9820000001", Email: "rajesh@example.com"},
			Amenities:     []string{"parking", "gym", "swimming pool"},
			CreatedAt:     now, ListingDate: now, UpdatedAt: now,
		},
		{
			Owner:         "seed-rajesh",
			Title:         "Independent Villa in Koregaon Park",
			Description:   "Four bedroom villa with a private garden on a quiet lane.",
			PropertyType:  entities.TypeVilla,
			Status:        entities.StatusAvailable,
			Price:         48_000_000,
			Bedrooms:      4,
			Bathrooms:     4,
			SquareFootage: 3200,
			Location:      entities.Location{City: "Pune", Area: "Koregaon Park"},
			SellerContact: entities.SellerContact{Name: "Rajesh Kumar", Phone: "+91-9820000001", Email: "rajesh@example.com"},
			Amenities:     []string{"garden", "parking"},
			CreatedAt:     now, ListingDate: now, UpdatedAt: now,
		},
		{
			Owner:         "seed-priya",
			Title:         "Residential Plot near Whitefield",
			Description:   "Corner plot in a gated layout, clear title, ready for construction.",
			PropertyType:  entities.TypePlot,
			Status:        entities.StatusPending,
			Price:         9_500_000,
			SquareFootage: 2400,
			Location:      entities.Location{City: "Bengaluru", Area: "Whitefield"},
			SellerContact: entities.SellerContact{Name: "Priya Sharma", Phone: "+91-9820000002", Email: "priya@example.com"},
			CreatedAt:     now, ListingDate: now, UpdatedAt: now,
		},
		{
			Owner:         "seed-priya",
			Title:         "2BHK House in Anna Nagar",
			Description:   "Well-maintained house close to the metro, sold recently.",
			PropertyType:  entities.TypeHouse,
			Status:        entities.StatusSold,
			Price:         12_000_000,
			Bedrooms:      2,
			Bathrooms:     2,
			SquareFootage: 1100,
			Location:      entities.Location{City: "Chennai", Area: "Anna Nagar"},
			SellerContact: entities.SellerContact{Name: "Priya Sharma", Phone: "+91-9820000002", Email: "priya@example.com"},
			Amenities:     []string{"parking"},
			CreatedAt:     now, ListingDate: now, UpdatedAt: now,
		},
	}

	for i := range listings {
		id, err := propertyRepo.Create(ctx, &listings[i])
		if err != nil {
			log.Printf("Failed to create listing %q: %v", listings[i].Title, err)
			continue
		}
		if searchRepo != nil {
			if err := searchRepo.Index(ctx, &listings[i]); err != nil {
				log.Printf("Failed to index listing %d: %v", id, err)
			}
		}
		log.Printf("Seeded listing %d: %s", id, listings[i].Title)
	}

	log.Println("Seeding complete")
}
