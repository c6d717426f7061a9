package donation

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woofi-pets/donation-server/pkg/solana"
)

func TestDonateSolInstruction_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 3)

	args := &DonateSolInstructionArgs{
		SubjectID: "dog-42",
		Amount:    1_000_000_000,
	}
	accounts := &DonateSolInstructionAccounts{
		Donor:     keys[0],
		Record:    keys[1],
		Recipient: keys[2],
	}

	instruction := NewDonateSolInstruction(accounts, args)

	assert.EqualValues(t, PROGRAM_ID, instruction.Program)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.True(t, instruction.Accounts[1].IsWritable)
	assert.True(t, instruction.Accounts[2].IsWritable)
	assert.EqualValues(t, SYSTEM_PROGRAM_ID, instruction.Accounts[3].PublicKey)

	tx := solana.NewTransaction(keys[0], instruction)

	decompiled, err := DecompileDonateSol(tx.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, *args, decompiled.Args)
	assert.EqualValues(t, keys[0], decompiled.Accounts.Donor)
	assert.EqualValues(t, keys[1], decompiled.Accounts.Record)
	assert.EqualValues(t, keys[2], decompiled.Accounts.Recipient)
}

func TestDonateTokenInstruction_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 6)

	args := &DonateTokenInstructionArgs{
		SubjectID: "dog-42",
		Amount:    25_000_000,
	}
	accounts := &DonateTokenInstructionAccounts{
		Donor:                 keys[0],
		Record:                keys[1],
		Mint:                  keys[2],
		DonorTokenAccount:     keys[3],
		RecipientTokenAccount: keys[4],
		Authority:             keys[5],
	}

	instruction := NewDonateTokenInstruction(accounts, args)

	assert.EqualValues(t, PROGRAM_ID, instruction.Program)
	assert.True(t, instruction.Accounts[5].IsSigner)
	assert.EqualValues(t, SPL_TOKEN_PROGRAM_ID, instruction.Accounts[6].PublicKey)

	tx := solana.NewTransaction(keys[5], instruction)

	decompiled, err := DecompileDonateToken(tx.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, *args, decompiled.Args)
	assert.EqualValues(t, keys[0], decompiled.Accounts.Donor)
	assert.EqualValues(t, keys[1], decompiled.Accounts.Record)
	assert.EqualValues(t, keys[2], decompiled.Accounts.Mint)
	assert.EqualValues(t, keys[3], decompiled.Accounts.DonorTokenAccount)
	assert.EqualValues(t, keys[4], decompiled.Accounts.RecipientTokenAccount)
	assert.EqualValues(t, keys[5], decompiled.Accounts.Authority)
}

func TestDecompile_WrongInstructionType(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := NewDonateSolInstruction(
		&DonateSolInstructionAccounts{
			Donor:     keys[0],
			Record:    keys[1],
			Recipient: keys[2],
		},
		&DonateSolInstructionArgs{SubjectID: "dog-42", Amount: 1},
	)
	tx := solana.NewTransaction(keys[0], instruction)

	_, err := DecompileDonateToken(tx.Message, 0)
	assert.Equal(t, ErrInvalidInstructionData, err)

	_, err = DecompileDonateSol(tx.Message, 1)
	assert.Equal(t, ErrInvalidInstructionData, err)
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
