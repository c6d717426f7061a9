package processor

import "github.com/pkg/errors"

// Terminal validation and execution failures. Each aborts the entire
// unit of work; no partial state is ever written.
var (
	ErrUnauthorized         = errors.New("missing required signer")
	ErrAddressMismatch      = errors.New("supplied record address does not match derivation")
	ErrInvalidAmount        = errors.New("donation amount must be positive")
	ErrInsufficientFunds    = errors.New("insufficient funds for donation")
	ErrMintMismatch         = errors.New("token account mint does not match declared mint")
	ErrAccountOwnerMismatch = errors.New("account is not owned by the expected program")
	ErrOverflow             = errors.New("record aggregate would overflow")
)
