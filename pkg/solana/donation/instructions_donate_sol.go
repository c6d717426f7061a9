package donation

import (
	"bytes"
	"crypto/ed25519"

	"github.com/woofi-pets/donation-server/pkg/solana"
)

type DonateSolInstructionArgs struct {
	SubjectID string
	Amount    uint64
}

type DonateSolInstructionAccounts struct {
	Donor     ed25519.PublicKey
	Record    ed25519.PublicKey
	Recipient ed25519.PublicKey
}

func NewDonateSolInstruction(
	accounts *DonateSolInstructionAccounts,
	args *DonateSolInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+4+len(args.SubjectID)+8)

	putInstructionType(data, InstructionTypeDonateSol, &offset)
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
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Record,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Recipient,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

type DecompiledDonateSol struct {
	Args     DonateSolInstructionArgs
	Accounts DonateSolInstructionAccounts
}

func DecompileDonateSol(m solana.Message, index int) (*DecompiledDonateSol, error) {
	if index >= len(m.Instructions) {
		return nil, ErrInvalidInstructionData
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], PROGRAM_ID) {
		return nil, ErrInvalidProgram
	}
	if len(i.Accounts) != 4 {
		return nil, ErrInvalidInstructionData
	}
	if len(i.Data) < 1+4+8 {
		return nil, ErrInvalidInstructionData
	}

	var offset int
	var instructionType InstructionType
	getInstructionType(i.Data, &instructionType, &offset)
	if instructionType != InstructionTypeDonateSol {
		return nil, ErrInvalidInstructionData
	}

	var decompiled DecompiledDonateSol
	if !getBorshString(i.Data, &decompiled.Args.SubjectID, &offset) {
		return nil, ErrInvalidInstructionData
	}
	if len(i.Data) != offset+8 {
		return nil, ErrInvalidInstructionData
	}
	getUint64(i.Data, &decompiled.Args.Amount, &offset)

	decompiled.Accounts.Donor = m.Accounts[i.Accounts[0]]
	decompiled.Accounts.Record = m.Accounts[i.Accounts[1]]
	decompiled.Accounts.Recipient = m.Accounts[i.Accounts[2]]

	if !bytes.Equal(m.Accounts[i.Accounts[3]], SYSTEM_PROGRAM_ID) {
		return nil, ErrInvalidInstructionData
	}

	return &decompiled, nil
}
