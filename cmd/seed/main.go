// Command seed resets the database and loads demo accounts, applications
// and one approved artist.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/security"
	mongodb "github.com/bandstand/onboarding-api/internal/infrastructure/db/mongo"
	"github.com/bandstand/onboarding-api/pkg/logger"
)

// seedConfig needs no signing key, so it does not go through config.Load.
type seedConfig struct {
	MongoURI   string `env:"MONGODB_URL,   default=mongodb://localhost:27017"`
	Database   string `env:"DATABASE_NAME, default=musical_events"`
	BcryptCost int    `env:"BCRYPT_COST,   default=12"`
	LogLevel   string `env:"LOG_LEVEL,     default=info"`
}

type account struct {
	id, email, password string
	role                domain.Role
	createdAt           time.Time
}

func day(hour, minute int) time.Time {
	return time.Date(2025, 8, 18, hour, minute, 0, 0, time.UTC)
}

var accounts = []account{
	{"66a01a111111111111111111", "admin@eventco.com", "AdminPass123", domain.RoleAdmin, day(10, 0)},
	{"66a01a222222222222222222", "artist1@mail.com", "ArtistPass123", domain.RoleArtist, day(11, 0)},
	{"66a01a333333333333333333", "user1@mail.com", "UserPass123", domain.RoleUser, day(12, 0)},
	{"66a01a444444444444444444", "user2@mail.com", "UserPass123", domain.RoleUser, day(12, 30)},
}

var applications = []*domain.ArtistApplication{
	{
		ID:             "66a02b111111111111111111",
		UserID:         "66a01a333333333333333333",
		StageName:      "DJ Nova",
		Genres:         []string{"Electronic", "House"},
		Bio:            "Upcoming DJ specializing in deep house music with 3 years of experience performing at local clubs and events.",
		PortfolioLinks: []string{"https://soundcloud.com/djnova", "https://instagram.com/djnova_official"},
		Status:         domain.ApplicationPending,
		CreatedAt:      day(13, 0),
		UpdatedAt:      day(13, 0),
	},
	{
		ID:             "66a02b222222222222222222",
		UserID:         "66a01a444444444444444444",
		StageName:      "Luna Rivers",
		Genres:         []string{"Folk", "Acoustic"},
		Bio:            "Singer-songwriter with a passion for storytelling through music. I've been performing for 5 years and have released 2 independent albums.",
		PortfolioLinks: []string{"https://spotify.com/artist/lunarivers", "https://youtube.com/@lunarivers"},
		Status:         domain.ApplicationPending,
		CreatedAt:      day(14, 0),
		UpdatedAt:      day(14, 0),
	},
}

var artists = []*domain.Artist{
	{
		ID:             "66a02c111111111111111111",
		UserID:         "66a01a222222222222222222",
		StageName:      "The Harmony Band",
		Genres:         []string{"Rock", "Pop"},
		Bio:            "A band blending rock and pop with soulful lyrics. We've been performing together for 7 years and have released 3 albums.",
		PortfolioLinks: []string{"https://youtube.com/harmonyband", "https://spotify.com/artist/harmonyband"},
		CreatedAt:      day(14, 0),
	},
}

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintln(os.Stderr, "seed: load .env file:", err)
			os.Exit(1)
		}
	}

	var cfg seedConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "seed"})

	if err := seed(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("seeding failed")
		os.Exit(1)
	}
}

func seed(ctx context.Context, cfg seedConfig, log zerolog.Logger) error {
	hasher, err := security.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.MongoURI, Database: cfg.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	log.Info().Str("database", cfg.Database).Msg("clearing existing data")
	if err := mongodb.Reset(ctx, db); err != nil {
		return err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	users := mongodb.NewUserRepository(db)
	hashes := map[string]string{}
	for _, a := range accounts {
		hash, ok := hashes[a.password]
		if !ok {
			if hash, err = hasher.Hash(a.password); err != nil {
				return fmt.Errorf("hash password for %s: %w", a.email, err)
			}
			hashes[a.password] = hash
		}
		if _, err := users.Create(ctx, &domain.User{
			ID:           a.id,
			Email:        a.email,
			PasswordHash: hash,
			Role:         a.role,
			CreatedAt:    a.createdAt,
		}); err != nil {
			return fmt.Errorf("seed user %s: %w", a.email, err)
		}
	}
	log.Info().Int("count", len(accounts)).Msg("users seeded")

	apps := mongodb.NewApplicationRepository(db)
	for _, app := range applications {
		if _, err := apps.Create(ctx, app); err != nil {
			return fmt.Errorf("seed application %s: %w", app.StageName, err)
		}
	}
	log.Info().Int("count", len(applications)).Msg("artist applications seeded")

	artistRepo := mongodb.NewArtistRepository(db)
	for _, artist := range artists {
		if _, err := artistRepo.Create(ctx, artist); err != nil {
			return fmt.Errorf("seed artist %s: %w", artist.StageName, err)
		}
	}
	log.Info().Int("count", len(artists)).Msg("artists seeded")

	for _, a := range accounts {
		log.Info().Str("role", a.role.String()).Str("email", a.email).Msg("test account")
	}
	return nil
}
