package cron

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/courselab/courselab-back/internal/db"
)

// StartJobs schedules the daily purge of expired sessions and verification
// records. Expired rows already read as absent; this just keeps the tables
// from growing without bound.
func StartJobs(store *db.Store) {
	c := cron.New()

	c.AddFunc("@daily", func() {
		ctx := context.Background()

		sessions, err := store.DeleteExpiredSessions(ctx)
		if err != nil {
			log.Println("failed to purge expired sessions:", err)
		} else if sessions > 0 {
			log.Printf("purged %d expired sessions", sessions)
		}

		verifications, err := store.DeleteExpiredVerifications(ctx)
		if err != nil {
			log.Println("failed to purge expired verifications:", err)
		} else if verifications > 0 {
			log.Printf("purged %d expired verifications", verifications)
		}
	})

	c.Start()
}
