package calendar

import (
	"errors"
	"fmt"
)

// Remote-call failures fold into three classes. Reads that fail degrade to
// the last-known snapshot; writes that fail trigger rollback upstream.
var (
	// ErrUnavailable covers transport failures and upstream 5xx.
	ErrUnavailable = errors.New("calendar unavailable")
	// ErrRejected covers upstream 4xx on an otherwise-delivered request.
	ErrRejected = errors.New("calendar rejected request")
	// ErrMalformed covers responses that cannot be decoded. Callers treat
	// it like ErrUnavailable: fail safe to prior state.
	ErrMalformed = errors.New("calendar response malformed")
)

func classifyStatus(op string, status int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	if status >= 500 {
		return fmt.Errorf("%s: %w: status %d: %s", op, ErrUnavailable, status, snippet)
	}
	return fmt.Errorf("%s: %w: status %d: %s", op, ErrRejected, status, snippet)
}
