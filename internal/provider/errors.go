package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrURLInvalid = errors.New("invalid source url")
	ErrTimeout    = errors.New("request timed out")
	ErrDecode     = errors.New("decode response")
	ErrParse      = errors.New("no pattern matched")
)

// HTTPStatusError is returned when a source answers with a non-200 status.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.Code)
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
