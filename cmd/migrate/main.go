package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/internal/migrate"
)

func main() {
	fs := flag.NewFlagSet("gnmradar-migrate", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to the main config file")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	main, err := config.LoadMain(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		main.DB.Host, main.DB.Port, main.DB.User, main.DB.Password, main.DB.Database, main.DB.SSLMode)

	if err := migrate.Up(dsn); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")
}
