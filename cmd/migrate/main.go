package main

import (
	"log"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/rajac/admission-portal/internal/repository"
	"github.com/rajac/admission-portal/migrations"
	"github.com/rajac/admission-portal/pkg/config"
	"github.com/rajac/admission-portal/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	cli := &commandLine{db: db.DB, admins: repository.NewAdminRepository(db), out: os.Stdout}
	if err := cli.run(os.Args[1:]); err != nil {
		if err != errHelp {
			log.Printf("error: %v", err)
		}
		db.Close()
		os.Exit(1)
	}
}
