package gmail

import "errors"

var (
	// ErrAuth means the session is missing, expired or was rejected.
	ErrAuth = errors.New("gmail: authentication failed")
	// ErrTransport covers every other failed request.
	ErrTransport = errors.New("gmail: request failed")
	// ErrDataShape means a response lacked a field the caller relies on.
	ErrDataShape = errors.New("gmail: unexpected response shape")
)
