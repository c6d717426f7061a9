package ledger

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"

	"github.com/woofi-pets/donation-server/pkg/solana/donation"
	"github.com/woofi-pets/donation-server/pkg/solana/token"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrMintMismatch        = errors.New("token account mint mismatch")
	ErrOwnerMismatch       = errors.New("account owner mismatch")
	ErrNotAuthorized       = errors.New("authority cannot move funds from source account")
	ErrOverflow            = errors.New("balance overflow")
	ErrInvalidTokenAccount = errors.New("invalid token account")
)

// CreateTokenAccount installs a funded token account for a mint.
// Intended for genesis and test setup.
func (l *Ledger) CreateTokenAccount(address, mint, owner ed25519.PublicKey, amount uint64) {
	state := token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.AccountStateInitialized,
	}
	l.SetAccount(address, &Account{
		Lamports: MinimumBalanceForRentExemption(token.AccountSize),
		Owner:    token.ProgramKey,
		Data:     state.Marshal(),
	})
}

// TransferNative moves lamports between accounts within the unit.
//
// The destination is created implicitly when missing. Fails closed: on
// any error the unit stages nothing for this transfer.
func (u *Unit) TransferNative(from, to ed25519.PublicKey, amount uint64) error {
	source, err := u.GetAccount(from)
	if err != nil {
		return errors.Wrap(err, "failed to load source account")
	}
	if source.Lamports < amount {
		return ErrInsufficientFunds
	}

	// The host hands a program one shared reference per account, so a
	// self-transfer debits and credits the same balance.
	var dest *Account
	if bytes.Equal(from, to) {
		dest = source
	} else {
		dest, err = u.GetAccount(to)
		if err == ErrAccountNotFound {
			dest = &Account{Owner: donation.SYSTEM_PROGRAM_ID}
		} else if err != nil {
			return errors.Wrap(err, "failed to load destination account")
		}
	}

	source.Lamports -= amount
	if dest.Lamports > math.MaxUint64-amount {
		return ErrOverflow
	}
	dest.Lamports += amount

	if err := u.PutAccount(from, source); err != nil {
		return err
	}
	return u.PutAccount(to, dest)
}

// TransferToken moves token amounts between two token accounts of the
// given mint, authorized either by the source owner or by a delegate
// with sufficient delegated allowance.
func (u *Unit) TransferToken(mint, from, to, authority ed25519.PublicKey, amount uint64) error {
	sourceAccount, sourceState, err := u.getTokenAccount(from, mint)
	if err != nil {
		return err
	}

	// Self-transfers share one account reference; anything else would
	// let the credit overwrite the debit.
	destAccount, destState := sourceAccount, sourceState
	if !bytes.Equal(from, to) {
		destAccount, destState, err = u.getTokenAccount(to, mint)
		if err != nil {
			return err
		}
	}

	isOwner := bytes.Equal(sourceState.Owner, authority)
	isDelegate := len(sourceState.Delegate) > 0 && bytes.Equal(sourceState.Delegate, authority)
	if !isOwner && !isDelegate {
		return ErrNotAuthorized
	}

	if sourceState.Amount < amount {
		return ErrInsufficientFunds
	}
	if isDelegate {
		if sourceState.DelegatedAmount < amount {
			return ErrInsufficientFunds
		}
		sourceState.DelegatedAmount -= amount
	}

	sourceState.Amount -= amount
	if destState.Amount > math.MaxUint64-amount {
		return ErrOverflow
	}
	destState.Amount += amount

	sourceAccount.Data = sourceState.Marshal()
	destAccount.Data = destState.Marshal()

	if err := u.PutAccount(from, sourceAccount); err != nil {
		return err
	}
	return u.PutAccount(to, destAccount)
}

// TokenAccount returns the decoded token state at the address, without
// binding it to a particular mint.
func (u *Unit) TokenAccount(address ed25519.PublicKey) (*token.Account, error) {
	account, err := u.GetAccount(address)
	if err == ErrAccountNotFound {
		return nil, ErrInvalidTokenAccount
	} else if err != nil {
		return nil, err
	}

	if !bytes.Equal(account.Owner, token.ProgramKey) {
		return nil, ErrOwnerMismatch
	}

	var state token.Account
	if !state.Unmarshal(account.Data) {
		return nil, ErrInvalidTokenAccount
	}
	return &state, nil
}

func (u *Unit) getTokenAccount(address, mint ed25519.PublicKey) (*Account, *token.Account, error) {
	account, err := u.GetAccount(address)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load token account")
	}

	if !bytes.Equal(account.Owner, token.ProgramKey) {
		return nil, nil, ErrOwnerMismatch
	}

	var state token.Account
	if !state.Unmarshal(account.Data) {
		return nil, nil, ErrInvalidTokenAccount
	}
	if state.State != token.AccountStateInitialized {
		return nil, nil, ErrInvalidTokenAccount
	}
	if !bytes.Equal(state.Mint, mint) {
		return nil, nil, ErrMintMismatch
	}

	return account, &state, nil
}
