package donation

import (
	"bytes"
	"crypto/ed25519"

	"github.com/woofi-pets/donation-server/pkg/solana"
)

type DonateTokenInstructionArgs struct {
	SubjectID string
	Amount    uint64
}

type DonateTokenInstructionAccounts struct {
	Donor                 ed25519.PublicKey
	Record                ed25519.PublicKey
	Mint                  ed25519.PublicKey
	DonorTokenAccount     ed25519.PublicKey
	RecipientTokenAccount ed25519.PublicKey
	Authority             ed25519.PublicKey
}

func NewDonateTokenInstruction(
	accounts *DonateTokenInstructionAccounts,
	args *DonateTokenInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+4+len(args.SubjectID)+8)

	putInstructionType(data, InstructionTypeDonateToken, &offset)
	putBorshString(data, args.SubjectID, &offset)
	putUint64(data, args.Amount, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Donor,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Record,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.DonorTokenAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.RecipientTokenAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

type DecompiledDonateToken struct {
	Args     DonateTokenInstructionArgs
	Accounts DonateTokenInstructionAccounts
}

func DecompileDonateToken(m solana.Message, index int) (*DecompiledDonateToken, error) {
	if index >= len(m.Instructions) {
		return nil, ErrInvalidInstructionData
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], PROGRAM_ID) {
		return nil, ErrInvalidProgram
	}
	if len(i.Accounts) != 7 {
		return nil, ErrInvalidInstructionData
	}
	if len(i.Data) < 1+4+8 {
		return nil, ErrInvalidInstructionData
	}

	var offset int
	var instructionType InstructionType
	getInstructionType(i.Data, &instructionType, &offset)
	if instructionType != InstructionTypeDonateToken {
		return nil, ErrInvalidInstructionData
	}

	var decompiled DecompiledDonateToken
	if !getBorshString(i.Data, &decompiled.Args.SubjectID, &offset) {
		return nil, ErrInvalidInstructionData
	}
	if len(i.Data) != offset+8 {
		return nil, ErrInvalidInstructionData
	}
	getUint64(i.Data, &decompiled.Args.Amount, &offset)

	decompiled.Accounts.Donor = m.Accounts[i.Accounts[0]]
	decompiled.Accounts.Record = m.Accounts[i.Accounts[1]]
	decompiled.Accounts.Mint = m.Accounts[i.Accounts[2]]
	decompiled.Accounts.DonorTokenAccount = m.Accounts[i.Accounts[3]]
	decompiled.Accounts.RecipientTokenAccount = m.Accounts[i.Accounts[4]]
	decompiled.Accounts.Authority = m.Accounts[i.Accounts[5]]

	if !bytes.Equal(m.Accounts[i.Accounts[6]], SPL_TOKEN_PROGRAM_ID) {
		return nil, ErrInvalidInstructionData
	}

	return &decompiled, nil
}
