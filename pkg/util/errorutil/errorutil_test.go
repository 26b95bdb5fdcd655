package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorMapsNoRows(t *testing.T) {
	err := fmt.Errorf("fetch ticket: %w", pgx.ErrNoRows)
	domainErr := ToDomainError(err)
	if domainErr.Code != "NOT_FOUND" || domainErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("mapped to %s/%d", domainErr.Code, domainErr.HTTPStatus)
	}
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewForbidden("admin privileges required")
	domainErr := ToDomainError(fmt.Errorf("wrapped: %w", original))
	if domainErr.Code != "FORBIDDEN" {
		t.Fatalf("code = %s", domainErr.Code)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	if domainErr.Code != "INTERNAL_ERROR" || domainErr.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("mapped to %s/%d", domainErr.Code, domainErr.HTTPStatus)
	}
	if !errors.Is(domainErr, domainErr.Err) {
		t.Fatalf("unwrap broken")
	}
}

func TestIsCode(t *testing.T) {
	err := NewValidationError("subject is required", map[string]any{"field": "subject"})
	if !IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected VALIDATION_FAILED")
	}
	if IsCode(err, "NOT_FOUND") {
		t.Fatalf("unexpected match")
	}
	if IsCode(errors.New("plain"), "VALIDATION_FAILED") {
		t.Fatalf("plain errors carry no code")
	}
}
