package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	_ "modernc.org/sqlite"

	"github.com/lox/climatefuture/internal/api"
	"github.com/lox/climatefuture/internal/climate"
	"github.com/lox/climatefuture/internal/geocode"
	"github.com/lox/climatefuture/internal/narrative"
	"github.com/lox/climatefuture/internal/store"
)

var cli struct {
	EnvFile  kongdotenv.ENVFileConfig `kong:"optional,name=env-file,help='Path to a .env file to load.'"`
	DB       string                   `help:"Path to the SQLite cache database." default:"data/climatefuture.db" env:"CLIMATEFUTURE_DB"`
	Port     string                   `help:"HTTP server port." default:"8080" env:"PORT"`
	Window   int                      `help:"Statistics window size in years." default:"5" env:"CLIMATEFUTURE_WINDOW"`
	Model    string                   `help:"OpenAI model used for narratives." default:"gpt-4o" env:"OPENAI_MODEL"`
	CacheTTL time.Duration            `help:"How long climate API responses stay cached." default:"1h" env:"CLIMATEFUTURE_CACHE_TTL"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("climatefuture"),
		kong.Description("Explains how climate change will affect daily life at an address."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	cache := store.NewCache(db, cli.CacheTTL)
	if err := cache.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	if pruned, err := cache.Prune(); err != nil {
		log.Printf("prune cache: %v", err)
	} else if pruned > 0 {
		log.Printf("pruned %d stale cache entries", pruned)
	}

	geocoder := geocode.NewClient()
	climateClient := climate.NewClient(cache)

	// Narrative generation is optional - may not have API key.
	var narrator api.NarrativeGenerator
	if gen, err := narrative.NewGenerator(cli.Model); err != nil {
		log.Printf("narrative generation disabled: %v", err)
	} else {
		narrator = gen
	}

	server := api.NewServer(geocoder, climateClient, narrator, cli.Port, cli.Window)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
