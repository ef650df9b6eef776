package clinicerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString_WithField(t *testing.T) {
	err := Validation("phone", "is required")
	want := "validation: phone: is required"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestIsKind(t *testing.T) {
	err := Conflict("invoice already exists")
	if !IsKind(err, KindConflict) {
		t.Error("expected conflict kind")
	}
	if IsKind(err, KindValidation) {
		t.Error("did not expect validation kind")
	}
	if IsKind(errors.New("plain"), KindConflict) {
		t.Error("plain error should not match any kind")
	}
}

func TestIsKind_Wrapped(t *testing.T) {
	err := fmt.Errorf("issuing invoice: %w", Permission("admin only"))
	if !IsKind(err, KindPermission) {
		t.Error("expected permission kind through wrapping")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("name", "is required"), http.StatusBadRequest},
		{Permission("forbidden"), http.StatusForbidden},
		{Conflict("duplicate"), http.StatusConflict},
		{NotFound("invoice"), http.StatusNotFound},
		{Storage(errors.New("down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStorage_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage(cause)
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable")
	}
}
