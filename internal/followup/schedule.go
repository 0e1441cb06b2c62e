// Package followup holds the pure decision logic of the supplier engagement
// tracker: when a contact is due for a follow-up and when an inquiry has
// received quotes from every contacted supplier. Nothing here touches the
// clock, the database or the network; callers inject "now".
package followup

import (
	"time"

	"github.com/AndreiCalugar/FertiHub/internal/models"
)

// DefaultIntervalDays is the cadence for urgency 1 and any unmapped value.
const DefaultIntervalDays = 7

// IntervalDays maps an inquiry's urgency level to the number of days to wait
// between contacts. Values outside 1-5 fall back to the default with no error
// raised.
func IntervalDays(urgency int) int {
	switch urgency {
	case 5:
		return 1
	case 4:
		return 2
	case 3:
		return 3
	case 2:
		return 5
	default:
		return DefaultIntervalDays
	}
}

// IsDue reports whether a contact should receive a follow-up at instant now.
//
// A contact that has responded is never due. A contact marked undeliverable is
// terminal and never due. Otherwise the elapsed time since the contact anchor
// (last follow-up, else initial send, else row creation) is floor-divided into
// whole days and compared against the urgency interval, so a contact sitting
// exactly on the boundary is due and fractional days never round up.
func IsDue(contact *models.InquirySupplier, urgency int, now time.Time) bool {
	if contact.ResponseReceived {
		return false
	}
	if contact.EmailStatus == models.EmailStatusUndeliverable {
		return false
	}
	anchor := contact.ContactAnchor()
	if now.Before(anchor) {
		return false
	}
	daysSinceContact := int(now.Sub(anchor) / (24 * time.Hour))
	return daysSinceContact >= IntervalDays(urgency)
}

// DaysSince returns the whole days elapsed from t to now, floored at zero.
// Used for the "X days ago" line in follow-up emails.
func DaysSince(t, now time.Time) int {
	if now.Before(t) {
		return 0
	}
	return int(now.Sub(t) / (24 * time.Hour))
}
