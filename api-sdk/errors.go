package apisdk

import (
	"errors"

	"github.com/hilthontt/devtea/api-sdk/internal/apierror"
)

type (
	TransportError = apierror.TransportError
	CommandError   = apierror.CommandError
)

var (
	ErrMissingIDParameter = errors.New("missing required id parameter")
	ErrMissingUsername    = errors.New("missing required username parameter")
	ErrMissingTarget      = errors.New("exactly one of roomId or recipientId is required")
	ErrUnexpectedResult   = errors.New("unexpected result type")
)

// IsTransportError reports whether err is a network level failure that left
// the server state unknown.
func IsTransportError(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}

// IsCommandError reports whether the server answered and rejected the
// request.
func IsCommandError(err error) bool {
	var command *CommandError
	return errors.As(err, &command)
}
