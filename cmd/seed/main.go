package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"nominas/backend/internal/config"
	"nominas/backend/internal/logging"
	"nominas/backend/internal/repository"
)

// Seeds the shared reference catalog: regions, locations and tenant
// type codes. Tenant schemas are never seeded here; they are
// provisioned lazily on first authenticated access.
func main() {
	ctx := context.Background()
	logger := logging.NewLogger()

	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	repo := repository.NewPostgresRepository(pool)

	// 1. Ensure the directory and catalog tables exist
	if err := repo.EnsureSharedTables(ctx); err != nil {
		log.Fatalf("Failed to create shared tables: %v", err)
	}
	logger.Info("Shared tables ready")

	// 2. Seed regions and their locations, skipping existing ones
	regions := map[string][]string{
		"Centro": {"Ciudad de México", "Toluca", "Puebla"},
		"Norte":  {"Monterrey", "Chihuahua", "Tijuana"},
		"Sur":    {"Mérida", "Oaxaca", "Tuxtla Gutiérrez"},
	}
	for region, locations := range regions {
		var regionID int64
		err := pool.QueryRow(ctx, "SELECT id FROM regions WHERE name = $1", region).Scan(&regionID)
		if err != nil {
			if err := pool.QueryRow(ctx,
				"INSERT INTO regions (name) VALUES ($1) RETURNING id", region).Scan(&regionID); err != nil {
				log.Fatalf("Failed to seed region %s: %v", region, err)
			}
			logger.Info("Seeded region", "name", region, "id", regionID)
		} else {
			logger.Info("Skipping existing region", "name", region)
		}

		for _, location := range locations {
			tag, err := pool.Exec(ctx,
				`INSERT INTO locations (region_id, name)
				 SELECT $1, $2 WHERE NOT EXISTS (
					SELECT 1 FROM locations WHERE region_id = $1 AND name = $2)`,
				regionID, location)
			if err != nil {
				log.Fatalf("Failed to seed location %s: %v", location, err)
			}
			if tag.RowsAffected() > 0 {
				logger.Info("Seeded location", "name", location, "region_id", regionID)
			}
		}
	}

	// 3. Seed tenant type codes
	types := []struct {
		Code int
		Name string
	}{
		{1, "Persona Física"},
		{2, "Persona Moral"},
	}
	for _, t := range types {
		if _, err := pool.Exec(ctx,
			"INSERT INTO tenant_types (code, name) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING",
			t.Code, t.Name); err != nil {
			log.Fatalf("Failed to seed tenant type %d: %v", t.Code, err)
		}
	}

	logger.Info("Seeding complete!")
}
