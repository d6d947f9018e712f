package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:   http.StatusNotFound,
		KindValidation: http.StatusBadRequest,
		KindBadRequest: http.StatusBadRequest,
		KindInternal:   http.StatusInternalServerError,
		KindUnknown:    http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := New(kind, "x").HTTPStatus(); got != want {
			t.Fatalf("kind %d: expected %d, got %d", kind, want, got)
		}
	}
}

func TestGetKindThroughWrapping(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("update lead: %w", Internal("failed to persist estimate", base))

	if !Is(err, KindInternal) {
		t.Fatal("expected wrapped internal kind to be found")
	}
	if !errors.Is(err, base) {
		t.Fatal("expected underlying error to be reachable")
	}
}
