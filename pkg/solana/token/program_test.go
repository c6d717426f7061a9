package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woofi-pets/donation-server/pkg/solana"
)

func TestProgramKeys(t *testing.T) {
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", base58.Encode(ProgramKey))
	assert.Equal(t, "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL", base58.Encode(AssociatedTokenAccountProgramKey))
}

func TestInitializeAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := InitializeAccount(keys[0], keys[1], keys[2])

	assert.Equal(t, []byte{byte(CommandInitializeAccount)}, instruction.Data)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[0].IsSigner)
	for i := 1; i < 4; i++ {
		assert.False(t, instruction.Accounts[i].IsWritable)
		assert.False(t, instruction.Accounts[i].IsSigner)
	}

	tx := solana.NewTransaction(keys[0], instruction)

	decompiled, err := DecompileInitializeAccount(tx.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.Account)
	assert.EqualValues(t, keys[1], decompiled.Mint)
	assert.EqualValues(t, keys[2], decompiled.Owner)
}

func TestTransfer(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := Transfer(keys[0], keys[1], keys[2], 123456789)

	expectedData := []byte{byte(CommandTransfer), 0x15, 0xcd, 0x5b, 0x7, 0x0, 0x0, 0x0, 0x0}
	assert.Equal(t, expectedData, instruction.Data)

	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.False(t, instruction.Accounts[2].IsWritable)
	assert.True(t, instruction.Accounts[2].IsSigner)

	tx := solana.NewTransaction(keys[2], instruction)

	decompiled, err := DecompileTransfer(tx.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.Source)
	assert.EqualValues(t, keys[1], decompiled.Destination)
	assert.EqualValues(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 123456789, decompiled.Amount)

	command, err := GetCommand(tx.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, CommandTransfer, command)
}

func TestDecompileTransfer_InvalidInstruction(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := InitializeAccount(keys[0], keys[1], keys[2])
	tx := solana.NewTransaction(keys[0], instruction)

	_, err := DecompileTransfer(tx.Message, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	_, err = DecompileTransfer(tx.Message, 1)
	assert.Error(t, err)
}

func TestGetAssociatedAccount(t *testing.T) {
	// Values generated by the SPL's reference implementation.
	wallet, err := base58.Decode("4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM")
	require.NoError(t, err)
	mint, err := base58.Decode("8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")
	require.NoError(t, err)

	addr, err := GetAssociatedAccount(wallet, mint)
	require.NoError(t, err)
	assert.Equal(t, "H7MQwEzt97tUJryocn3qaEoy2ymWstwyEk1i9Yv3EmuZ", base58.Encode(addr))
}

func TestCreateAssociatedTokenAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction, addr, err := CreateAssociatedTokenAccount(keys[0], keys[1], keys[2])
	require.NoError(t, err)
	assert.Empty(t, instruction.Data)

	expected, err := GetAssociatedAccount(keys[1], keys[2])
	require.NoError(t, err)
	assert.EqualValues(t, expected, addr)

	tx := solana.NewTransaction(keys[0], instruction)

	decompiled, err := DecompileCreateAssociatedAccount(tx.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], decompiled.Payer)
	assert.EqualValues(t, addr, decompiled.Address)
	assert.EqualValues(t, keys[1], decompiled.Owner)
	assert.EqualValues(t, keys[2], decompiled.Mint)
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
