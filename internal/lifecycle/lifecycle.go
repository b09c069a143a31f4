// Package lifecycle derives a certificate's temporal state from its dates.
//
// Everything here is a pure function of the record and an explicit reference
// date. The stored status field is never trusted as ground truth for display;
// the only permitted mutation is Reconcile, which corrects a stale ACTIVE
// status immediately before persistence.
package lifecycle

import (
	"time"

	"github.com/larenzzx/aetas-cert-tracker/internal/models"
)

// State is the effective display state of a certificate. It is the single
// source of truth for every badge, report and dashboard widget; nothing else
// re-derives threshold math.
type State string

const (
	StateLifetime     State = "LIFETIME"
	StateExpired      State = "EXPIRED"
	StateExpiringSoon State = "EXPIRING_SOON"
	StateValid        State = "VALID"
)

// DefaultExpirySoonDays is the window within which a dated, still-valid
// certificate counts as expiring soon.
const DefaultExpirySoonDays = 90

// truncateToDate drops the time-of-day component. All comparisons in this
// package are at date precision in UTC.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsExpired reports whether the certificate's expiry date has passed. A
// certificate with no expiry date is a lifetime credential and never expires.
// Expiring exactly today is not yet expired.
func IsExpired(cert *models.Certificate, today time.Time) bool {
	if cert.ExpiryDate == nil {
		return false
	}
	return truncateToDate(*cert.ExpiryDate).Before(truncateToDate(today))
}

// DaysUntilExpiry returns the signed number of days until the certificate
// expires, negative when it already has. ok is false for lifetime
// certificates.
func DaysUntilExpiry(cert *models.Certificate, today time.Time) (days int, ok bool) {
	if cert.ExpiryDate == nil {
		return 0, false
	}
	delta := truncateToDate(*cert.ExpiryDate).Sub(truncateToDate(today))
	return int(delta.Hours() / 24), true
}

// IsExpiringSoon reports whether the certificate expires within thresholdDays.
// Lifetime and already-expired certificates are never expiring soon, and
// neither is one expiring exactly today: the window is 0 < days <= threshold.
func IsExpiringSoon(cert *models.Certificate, today time.Time, thresholdDays int) bool {
	days, ok := DaysUntilExpiry(cert, today)
	if !ok {
		return false
	}
	return days > 0 && days <= thresholdDays
}

// DisplayState computes the effective state with a total precedence order:
// lifetime over expired over expiring-soon over valid. Lifetime is defined
// solely by the absence of an expiry date, regardless of the stored status.
// thresholdDays is the expiring-soon window; callers that honor the
// configured window must pass the same value here as everywhere else, so the
// state and every count derived from it agree.
func DisplayState(cert *models.Certificate, today time.Time, thresholdDays int) State {
	if cert.ExpiryDate == nil {
		return StateLifetime
	}
	if IsExpired(cert, today) {
		return StateExpired
	}
	if IsExpiringSoon(cert, today, thresholdDays) {
		return StateExpiringSoon
	}
	return StateValid
}

// BadgeClass maps a display state to its UI badge class.
func (s State) BadgeClass() string {
	switch s {
	case StateLifetime:
		return "badge-info"
	case StateExpired:
		return "badge-error"
	case StateExpiringSoon:
		return "badge-warning"
	default:
		return "badge-success"
	}
}

// StatusBadgeClass maps a stored status value to its UI badge class.
func StatusBadgeClass(status string) string {
	switch status {
	case models.CertStatusActive:
		return "badge-success"
	case models.CertStatusExpired:
		return "badge-error"
	case models.CertStatusRevoked:
		return "badge-warning"
	default:
		return "badge-neutral"
	}
}

// Reconcile corrects a stale ACTIVE status to EXPIRED when the expiry date
// has passed, and reports whether it changed anything. It never advances in
// the other direction and never touches REVOKED or already-EXPIRED records,
// so it is idempotent. Every write path must call it immediately before
// persisting, and the batch sweep calls it for stored records.
func Reconcile(cert *models.Certificate, today time.Time) bool {
	if cert.Status == models.CertStatusActive && IsExpired(cert, today) {
		cert.Status = models.CertStatusExpired
		return true
	}
	return false
}
