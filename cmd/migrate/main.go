// Command migrate manages the database schema.
//
//	migrate up                 apply pending migrations
//	migrate down               roll back the latest migration
//	migrate status             list migrations and their state
//	migrate fix-reaction-case  rewrite legacy reaction labels in place
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"engagement/internal/config"
	"engagement/internal/database"
	"engagement/internal/database/migrations"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s up|down|status|fix-reaction-case\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	db, err := database.ConnectDSN(config.LoadDatabaseDSN())
	if err != nil {
		log.Fatalf("Migrate failed: %v", err)
	}
	defer db.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = database.Migrate(ctx, db)
	case "down":
		err = database.MigrateDown(ctx, db)
	case "status":
		err = database.MigrateStatus(ctx, db)
	case "fix-reaction-case":
		var n int64
		n, err = migrations.FixReactionCase(ctx, db)
		if err == nil {
			log.Printf("Normalized %d reaction rows", n)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Migrate %s failed: %v", flag.Arg(0), err)
	}
}
