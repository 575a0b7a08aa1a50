package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/contenthub/internal/server"
	"github.com/dmitrijs2005/contenthub/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
