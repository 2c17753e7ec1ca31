package feed

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestShouldDeactivatePermanentStatuses(t *testing.T) {
	permanent := []int{
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusGone,
		http.StatusUnavailableForLegalReasons,
	}
	for _, status := range permanent {
		if !ShouldDeactivate(status, "") {
			t.Errorf("Expected status %d to be permanent", status)
		}
	}

	transient := []int{
		http.StatusOK,
		http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}
	for _, status := range transient {
		if ShouldDeactivate(status, "") {
			t.Errorf("Expected status %d to be transient", status)
		}
	}
}

func TestShouldDeactivatePermanentMessages(t *testing.T) {
	permanent := []string{
		"feed not found",
		"Domain Expired",
		"this site closed permanently",
		"content removed by owner",
	}
	for _, message := range permanent {
		if !ShouldDeactivate(0, message) {
			t.Errorf("Expected message '%s' to be permanent", message)
		}
	}

	transient := []string{
		"connection refused",
		"i/o timeout",
		"TLS handshake failure",
	}
	for _, message := range transient {
		if ShouldDeactivate(0, message) {
			t.Errorf("Expected message '%s' to be transient", message)
		}
	}
}

func TestShouldDeactivateMessageIgnoredWithStatus(t *testing.T) {
	// Message classification only applies when no HTTP status is available;
	// a 500 whose body mentions "not found" must stay transient.
	if ShouldDeactivate(http.StatusInternalServerError, "not found") {
		t.Error("Expected message classification to be skipped when a status is present")
	}
}

func TestDeriveStatus(t *testing.T) {
	if status := deriveStatus(nil); status != 0 {
		t.Errorf("Expected 0 for nil error, got %d", status)
	}
	if status := deriveStatus(context.DeadlineExceeded); status != http.StatusRequestTimeout {
		t.Errorf("Expected %d for deadline exceeded, got %d", http.StatusRequestTimeout, status)
	}
	if status := deriveStatus(errors.New("connection refused")); status != 0 {
		t.Errorf("Expected 0 for generic error, got %d", status)
	}
}
