package ledger

import (
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/woofi-pets/donation-server/pkg/testutil"
)

func TestExecuteInUnit_Commit(t *testing.T) {
	l := New()
	keys := generateKeys(t, 2)

	l.CreateNativeAccount(keys[0], 100)

	err := l.ExecuteInUnit(keys, func(u *Unit) error {
		return u.TransferNative(keys[0], keys[1], 40)
	})
	require.NoError(t, err)

	source, ok := l.GetAccount(keys[0])
	require.True(t, ok)
	assert.EqualValues(t, 60, source.Lamports)

	dest, ok := l.GetAccount(keys[1])
	require.True(t, ok)
	assert.EqualValues(t, 40, dest.Lamports)
}

func TestExecuteInUnit_DiscardOnError(t *testing.T) {
	l := New()
	keys := generateKeys(t, 2)

	l.CreateNativeAccount(keys[0], 100)

	err := l.ExecuteInUnit(keys, func(u *Unit) error {
		if err := u.TransferNative(keys[0], keys[1], 40); err != nil {
			return err
		}
		return errors.New("validation failed after transfer")
	})
	require.Error(t, err)

	source, ok := l.GetAccount(keys[0])
	require.True(t, ok)
	assert.EqualValues(t, 100, source.Lamports)

	_, ok = l.GetAccount(keys[1])
	assert.False(t, ok)
}

func TestExecuteInUnit_UndeclaredAccount(t *testing.T) {
	l := New()
	keys := generateKeys(t, 2)

	l.CreateNativeAccount(keys[0], 100)
	l.CreateNativeAccount(keys[1], 100)

	err := l.ExecuteInUnit(keys[:1], func(u *Unit) error {
		return u.TransferNative(keys[0], keys[1], 40)
	})
	assert.Equal(t, ErrUndeclaredAccount, errors.Cause(err))
}

func TestTransferNative_InsufficientFunds(t *testing.T) {
	l := New()
	keys := generateKeys(t, 2)

	l.CreateNativeAccount(keys[0], 10)

	err := l.ExecuteInUnit(keys, func(u *Unit) error {
		return u.TransferNative(keys[0], keys[1], 40)
	})
	assert.Equal(t, ErrInsufficientFunds, errors.Cause(err))

	source, ok := l.GetAccount(keys[0])
	require.True(t, ok)
	assert.EqualValues(t, 10, source.Lamports)
}

func TestTransferNative_SelfTransfer(t *testing.T) {
	l := New()
	keys := generateKeys(t, 1)

	l.CreateNativeAccount(keys[0], 500)

	// The debit and credit hit the same balance; nothing may be minted.
	err := l.ExecuteInUnit(keys, func(u *Unit) error {
		return u.TransferNative(keys[0], keys[0], 300)
	})
	require.NoError(t, err)

	account, ok := l.GetAccount(keys[0])
	require.True(t, ok)
	assert.EqualValues(t, 500, account.Lamports)

	err = l.ExecuteInUnit(keys, func(u *Unit) error {
		return u.TransferNative(keys[0], keys[0], 501)
	})
	assert.Equal(t, ErrInsufficientFunds, errors.Cause(err))
}

func TestTransferToken_SelfTransfer(t *testing.T) {
	l := New()
	keys := generateKeys(t, 3)
	mint, owner, account := keys[0], keys[1], keys[2]

	l.CreateTokenAccount(account, mint, owner, 1000)

	err := l.ExecuteInUnit(keys, func(u *Unit) error {
		return u.TransferToken(mint, account, account, owner, 400)
	})
	require.NoError(t, err)

	err = l.ExecuteInUnit(keys, func(u *Unit) error {
		state, err := u.TokenAccount(account)
		if err != nil {
			return err
		}
		assert.EqualValues(t, 1000, state.Amount)
		return nil
	})
	require.NoError(t, err)

	err = l.ExecuteInUnit(keys, func(u *Unit) error {
		return u.TransferToken(mint, account, account, owner, 1001)
	})
	assert.Equal(t, ErrInsufficientFunds, errors.Cause(err))
}

func TestTransferToken(t *testing.T) {
	l := New()
	keys := generateKeys(t, 5)
	mint, owner, source, dest := keys[0], keys[1], keys[2], keys[3]

	l.CreateTokenAccount(source, mint, owner, 1000)
	l.CreateTokenAccount(dest, mint, keys[4], 0)

	err := l.ExecuteInUnit(keys, func(u *Unit) error {
		return u.TransferToken(mint, source, dest, owner, 250)
	})
	require.NoError(t, err)

	err = l.ExecuteInUnit(keys, func(u *Unit) error {
		return u.TransferToken(mint, source, dest, keys[4], 1)
	})
	assert.Equal(t, ErrNotAuthorized, errors.Cause(err))

	otherMint := generateKeys(t, 1)[0]
	err = l.ExecuteInUnit(append(keys, otherMint), func(u *Unit) error {
		return u.TransferToken(otherMint, source, dest, owner, 1)
	})
	assert.Equal(t, ErrMintMismatch, errors.Cause(err))
}

func TestExecuteInUnit_ConcurrentDisjointUnits(t *testing.T) {
	l := New()

	pairs := make([][]ed25519.PublicKey, 16)
	for i := range pairs {
		pairs[i] = generateKeys(t, 2)
		l.CreateNativeAccount(pairs[i][0], 1000)
	}

	var wg sync.WaitGroup
	for _, pair := range pairs {
		wg.Add(1)
		go func(pair []ed25519.PublicKey) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				assert.NoError(t, l.ExecuteInUnit(pair, func(u *Unit) error {
					return u.TransferNative(pair[0], pair[1], 10)
				}))
			}
		}(pair)
	}
	wg.Wait()

	for _, pair := range pairs {
		source, ok := l.GetAccount(pair[0])
		require.True(t, ok)
		assert.EqualValues(t, 900, source.Lamports)

		dest, ok := l.GetAccount(pair[1])
		require.True(t, ok)
		assert.EqualValues(t, 100, dest.Lamports)
	}
}

func TestWithClock(t *testing.T) {
	at := time.Unix(1735689600, 0)
	l := New(WithClock(func() time.Time { return at }))
	keys := generateKeys(t, 1)

	require.NoError(t, l.ExecuteInUnit(keys, func(u *Unit) error {
		assert.EqualValues(t, 1735689600, u.Timestamp())
		return nil
	}))
}

func TestMinimumBalanceForRentExemption(t *testing.T) {
	assert.EqualValues(t, (128+165)*3480*2, MinimumBalanceForRentExemption(165))
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
