package services_test

import (
	"errors"
	"strings"
	"testing"

	"photosort/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalTool, "resolving", "query provider", "Nominatim unreachable", inner)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected ErrExternalTool marker")
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected inner error to survive wrapping")
	}
	for _, fragment := range []string{"resolving", "query provider", "Nominatim unreachable", "connection refused"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error message missing %q: %s", fragment, err)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "scanning", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected nil marker to default to ErrTransient")
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected generic detail, got %s", err)
	}
}
