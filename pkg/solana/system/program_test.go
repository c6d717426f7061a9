package system

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woofi-pets/donation-server/pkg/solana"
)

func TestCreateAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	assert.EqualValues(t, ProgramKey[:], instruction.Program)
	require.Len(t, instruction.Accounts, 2)
	assert.Equal(t, keys[0], instruction.Accounts[0].PublicKey)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.Equal(t, keys[1], instruction.Accounts[1].PublicKey)
	assert.True(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	txn := solana.NewTransaction(keys[0], instruction)
	decompiled, err := DecompileCreateAccount(txn.Message, 0)
	require.NoError(t, err)

	assert.Equal(t, keys[0], decompiled.Funder)
	assert.Equal(t, keys[1], decompiled.Address)
	assert.Equal(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 12345, decompiled.Lamports)
	assert.EqualValues(t, 67890, decompiled.Size)
}

func TestTransfer(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := Transfer(keys[0], keys[1], 123456789)

	assert.EqualValues(t, ProgramKey[:], instruction.Program)
	require.Len(t, instruction.Accounts, 2)
	assert.Equal(t, keys[0], instruction.Accounts[0].PublicKey)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.Equal(t, keys[1], instruction.Accounts[1].PublicKey)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	txn := solana.NewTransaction(keys[0], instruction)
	decompiled, err := DecompileTransfer(txn.Message, 0)
	require.NoError(t, err)

	assert.Equal(t, keys[0], decompiled.Source)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.EqualValues(t, 123456789, decompiled.Lamports)
}

func TestDecompileTransfer_InvalidInstruction(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 1, 2)
	txn := solana.NewTransaction(keys[0], instruction)

	_, err := DecompileTransfer(txn.Message, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	_, err = DecompileTransfer(txn.Message, 1)
	assert.Error(t, err)
}

func generateKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}
	return keys
}
