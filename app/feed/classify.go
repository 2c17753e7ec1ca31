package feed

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
)

// permanentStatuses are HTTP outcomes after which retrying a feed is
// pointless: the resource is gone or access is denied for good.
var permanentStatuses = map[int]bool{
	http.StatusForbidden:                  true,
	http.StatusNotFound:                   true,
	http.StatusGone:                       true,
	http.StatusUnavailableForLegalReasons: true,
}

// permanentErrorRe matches error messages indicating the upstream resource
// no longer exists, used when no HTTP status is available.
var permanentErrorRe = regexp.MustCompile(`(?i)(not found|removed|deleted|` +
	`domain (expired|suspended|parked)|` +
	`site (closed|shutdown|discontinued|offline)|` +
	`permanently (moved|unavailable|disabled))`)

// ShouldDeactivate classifies a fetch failure as permanent. Timeouts, 5xx
// responses and transient network errors never deactivate a feed.
func ShouldDeactivate(status int, message string) bool {
	if permanentStatuses[status] {
		return true
	}
	if status == 0 && permanentErrorRe.MatchString(message) {
		return true
	}
	return false
}

// deriveStatus maps a transport-level error onto an HTTP-equivalent status
// code. Timeouts become 408; anything else carries no status.
func deriveStatus(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return http.StatusRequestTimeout
	}
	return 0
}
