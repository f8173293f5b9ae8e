package db

import (
	"collaborative-whiteboard/internal/shape"
	"collaborative-whiteboard/internal/thread"

	"github.com/rs/zerolog/log"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&shape.Record{},
		&thread.Thread{},
		&thread.Comment{},
	)

	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Msg("database schema migrated")
}
