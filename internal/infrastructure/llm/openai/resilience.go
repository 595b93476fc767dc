package openai

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/infrastructure/resilience"
)

var statusCodeRe = regexp.MustCompile(`status code:? (\d{3})`)

func classifyLLMError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Verdict{Retry: true, CountAsFailure: true}
	}

	if code, ok := httpStatusFromError(err); ok {
		if isRetryableHTTPStatus(code) {
			return resilience.Verdict{Retry: true, CountAsFailure: true}
		}
		return resilience.Verdict{}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retry: true, CountAsFailure: true}
	}

	return resilience.Verdict{CountAsFailure: true}
}

// httpStatusFromError digs the HTTP status out of the provider error text;
// the client library does not expose a typed status error.
func httpStatusFromError(err error) (int, bool) {
	m := statusCodeRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	code, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false
	}
	return code, true
}

func isRetryableHTTPStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyLLMError(err).Retry || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
