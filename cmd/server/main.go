package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/graphloom/loom/internal/config"
	"github.com/graphloom/loom/internal/driver"
	"github.com/graphloom/loom/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	var d driver.GraphDriver
	if cfg.Memgraph.Enabled {
		md, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			log.Fatalf("Failed to connect to Memgraph: %v", err)
		}
		defer md.Close(context.Background())
		if err := md.BuildIndices(context.Background()); err != nil {
			log.Printf("Failed to build indices: %v", err)
		}
		d = md
	}

	srv := server.NewServer(cfg, d)
	r := srv.SetupRouter()

	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
