package displayid

import (
	"regexp"
	"testing"
	"time"
)

func TestNew_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^INV\d{9}$`)
	for i := 0; i < 50; i++ {
		id := New(PrefixInvoice)
		if !pattern.MatchString(id) {
			t.Fatalf("unexpected id format: %q", id)
		}
	}
}

func TestNew_UsesTimestampDigits(t *testing.T) {
	at := time.UnixMilli(1724567891234)
	id := newAt(PrefixPatient, at)
	if id[:9] != "PAT891234" {
		t.Errorf("expected last six millis digits 891234, got %q", id)
	}
}

func TestNew_Prefixes(t *testing.T) {
	for _, p := range []string{PrefixInvoice, PrefixPatient, PrefixAppointment, PrefixConsultation, PrefixBranch, PrefixStaff} {
		id := New(p)
		if id[:3] != p {
			t.Errorf("expected prefix %q, got %q", p, id)
		}
		if len(id) != len(p)+9 {
			t.Errorf("expected length %d, got %d (%q)", len(p)+9, len(id), id)
		}
	}
}
