package donation

import (
	"crypto/ed25519"
	"errors"

	"github.com/woofi-pets/donation-server/pkg/solana"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("4wQtk86gtn1tSUu67H1191wy4wfcm5jar4qku2fuNiBg")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID    = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))

	SYSVAR_RENT_PUBKEY = ed25519.PublicKey(mustBase58Decode("SysvarRent111111111111111111111111111111111"))
)

// Custom program error codes surfaced through transaction metadata.
const (
	ErrorUnauthorized solana.CustomError = iota + 6000
	ErrorAddressMismatch
	ErrorInvalidAmount
	ErrorInsufficientFunds
	ErrorMintMismatch
	ErrorAccountOwnerMismatch
	ErrorOverflow
)
