package services

import (
	"log/slog"
	"time"
)

// StartReconciler sweeps expired certificates once at startup and then every
// 24 hours, so rows whose expiry passed while nothing touched them still get
// flipped to EXPIRED.
func StartReconciler(certs *CertificateService, done chan struct{}) {
	sweep := func() {
		updated, err := certs.ReconcileAll(time.Now().UTC())
		if err != nil {
			slog.Error("certificate reconcile sweep failed", "error", err)
		} else if updated > 0 {
			slog.Info("certificate reconcile sweep completed", "updated", updated)
		}
	}

	go func() {
		sweep()
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep()
			case <-done:
				return
			}
		}
	}()
}
