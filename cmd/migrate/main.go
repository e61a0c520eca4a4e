package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/farmstore/internal/cart"
	"github.com/angelmondragon/farmstore/pkg/config"
	"github.com/angelmondragon/farmstore/pkg/db"
	"github.com/angelmondragon/farmstore/pkg/db/models"
	"github.com/angelmondragon/farmstore/pkg/logger"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|status|drop")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)
	requireResource(ctx, logg, "database config", cfg.DB.EnsureDSN())

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up":
		if err := cart.NewGormStore(dbClient).Migrate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "migrate up failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("cart schema up to date")

	case "status":
		migrator := dbClient.DB().WithContext(ctx).Migrator()
		if migrator.HasTable(&models.CartItem{}) {
			fmt.Println("cart_items: present")
		} else {
			fmt.Println("cart_items: missing")
		}

	case "drop":
		if err := dbClient.DB().WithContext(ctx).Migrator().DropTable(&models.CartItem{}); err != nil {
			fmt.Fprintf(os.Stderr, "migrate drop failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("cart_items dropped")

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
