package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"bazaar-be/internal/config"
	"bazaar-be/internal/db"
)

func main() {
	mode := flag.String("mode", db.DirectionUp, "migration mode: up or down")
	flag.Parse()

	cfg := config.LoadConfig()

	conn, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer conn.Close()

	if err := run(conn.DB, *mode); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("migrations %s: done\n", *mode)
}

func run(conn *sql.DB, mode string) error {
	switch mode {
	case db.DirectionUp, db.DirectionDown:
		return db.Migrate(conn, mode)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}
