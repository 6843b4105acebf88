package ptz

import "errors"

// Error kinds shared by all protocol clients and the dispatcher. Clients
// wrap these with detail via fmt.Errorf("%w: ...") so callers can match
// the kind with errors.Is while keeping the human-readable cause.
var (
	// ErrConnectionFailed covers socket/connect/HTTP-transport failures
	// and invalid host strings.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrCommandFailed means the request was sent but the response
	// indicates failure or could not be decoded.
	ErrCommandFailed = errors.New("command failed")

	// ErrTimeout means the device did not respond within the protocol's
	// fixed deadline.
	ErrTimeout = errors.New("timeout")

	// ErrProtocol means a response was received but violates the expected
	// wire format.
	ErrProtocol = errors.New("protocol error")

	// ErrNotConnected is returned by the dispatcher when no controller is
	// installed. No I/O is attempted.
	ErrNotConnected = errors.New("not connected")
)
