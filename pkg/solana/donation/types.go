package donation

type AccountType uint8

const (
	AccountTypeUnknown AccountType = iota

	AccountTypeDonationRecord
)

type InstructionType uint8

const (
	InstructionTypeUnknown InstructionType = iota

	InstructionTypeDonateSol
	InstructionTypeDonateToken
)

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	dst[*offset] = uint8(v)
	*offset += 1
}

func getInstructionType(src []byte, dst *InstructionType, offset *int) {
	*dst = InstructionType(src[*offset])
	*offset += 1
}
