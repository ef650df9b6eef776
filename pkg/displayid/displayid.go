// Package displayid generates short human-readable record identifiers used
// on invoices, patient cards, and the front-desk UI. These are display
// handles; rows are keyed by UUID in the database.
package displayid

import (
	"fmt"
	"math/rand"
	"time"
)

// Known prefixes.
const (
	PrefixInvoice      = "INV"
	PrefixPatient      = "PAT"
	PrefixAppointment  = "APT"
	PrefixConsultation = "CON"
	PrefixBranch       = "BRN"
	PrefixStaff        = "STF"
)

// New returns prefix + last six digits of the current unix-millis timestamp +
// three random digits, e.g. INV123456789. Collisions are possible but the
// unique index on the column catches them; callers retry on conflict.
func New(prefix string) string {
	return newAt(prefix, time.Now())
}

func newAt(prefix string, t time.Time) string {
	ms := t.UnixMilli() % 1_000_000
	return fmt.Sprintf("%s%06d%03d", prefix, ms, rand.Intn(1000))
}
