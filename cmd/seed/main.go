// Command main loads a profile catalog and optional demo users.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"hrdesk/internal/config"
	"hrdesk/internal/database"
	"hrdesk/internal/repository"
	"hrdesk/internal/seed"
	"hrdesk/internal/service"
	"hrdesk/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	catalogPath := flag.String("catalog", "", "YAML catalog file (defaults to the bundled catalog)")
	numUsers := flag.Int("users", 20, "Number of demo users to create")
	shouldClean := flag.Bool("clean", false, "Delete users and values before seeding")
	withCatalog := flag.Bool("clean-catalog", false, "With -clean, also delete the catalog")
	fakerSeed := flag.Int64("seed", 0, "Faker seed (0 picks one)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if *shouldClean {
		if err := seed.Clear(ctx, db, *withCatalog); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	defs, err := loadDefs(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to read catalog: %v", err)
	}

	store, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up storage: %v", err)
	}

	profileRepo := repository.NewProfileRepository(db, 0)
	profiles := service.NewProfileService(profileRepo)
	users := service.NewUserService(service.UserServiceDeps{
		Transactor:     repository.NewTransactor(db),
		Users:          repository.NewUserRepository(db),
		Profiles:       profileRepo,
		Values:         repository.NewProfileValueRepository(db),
		Files:          storage.NewAttachments(store),
		EmptyValueMode: cfg.EmptyValueMode,
	})

	created, err := seed.ApplyCatalog(ctx, profiles, defs)
	if err != nil {
		log.Fatalf("Catalog seeding failed: %v", err)
	}
	log.Printf("Created %d profile(s)", created)

	if *numUsers > 0 {
		catalog, err := profileRepo.Catalog(ctx)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		n, err := seed.Users(ctx, users, catalog, seed.NewFactory(*fakerSeed), *numUsers)
		if err != nil {
			log.Fatalf("User seeding failed: %v", err)
		}
		log.Printf("Created %d user(s); password for all: %s", n, seed.DemoPassword)
	}
}

func loadDefs(path string) ([]seed.ProfileDef, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.LoadCatalog(f)
}
