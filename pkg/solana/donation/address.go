package donation

import (
	"crypto/ed25519"

	"github.com/woofi-pets/donation-server/pkg/solana"
)

var (
	RecordPrefix = []byte("donation")
)

type GetRecordAddressArgs struct {
	SubjectID string
}

// GetRecordAddress derives the donation record address for a subject.
//
// The derivation is a pure function of the program id and the UTF-8
// subject identifier, so clients can predict record addresses before
// the first donation ever lands.
func GetRecordAddress(args *GetRecordAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		RecordPrefix,
		[]byte(args.SubjectID),
	)
}
