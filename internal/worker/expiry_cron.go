package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartExpiryCron enqueues a revisar_vencidos job every interval. Reads already
// expire apartados lazily; the sweep also releases stock of apartados nobody looks at.
func StartExpiryCron(ctx context.Context, d *Dispatcher, interval time.Duration) {
	if interval <= 0 {
		log.Info().Msg("expiry_cron: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("expiry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("expiry_cron: shutting down")
				return
			case <-ticker.C:
				if err := d.EnqueueRevisarVencidos(ctx); err != nil {
					log.Error().Err(err).Msg("expiry_cron: enqueue failed")
				}
			}
		}
	}()
}
