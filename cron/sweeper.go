package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"medibook/config"
	"medibook/services/booking"

	"github.com/robfig/cron/v3"
)

// InitExpirySweeper schedules the periodic pass that expires pending
// reservations whose confirmation window lapsed and frees their slots.
func InitExpirySweeper(bookingSvc booking.BookingService) *cron.Cron {
	c := cron.New()

	spec := fmt.Sprintf("@every %ds", config.AppConfig.SweepIntervalSecs)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := bookingSvc.SweepExpired(ctx, time.Now()); err != nil {
			log.Printf("[ExpirySweeper] ❌ Sweep failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("[ExpirySweeper] Failed to schedule sweep: %v", err)
	}

	c.Start()
	log.Printf("[ExpirySweeper] 🧹 Sweeping every %ds", config.AppConfig.SweepIntervalSecs)
	return c
}
