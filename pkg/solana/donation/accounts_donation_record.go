package donation

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	MaxSubjectIDLength = 32
)

const (
	DonationRecordAccountSize = (8 + // discriminator
		MaxSubjectIDLength + // subject id
		32 + // last donor
		8 + // cumulative amount
		8 + // donation count
		1 + 32 + // optional mint
		1 + // bump
		8) // last updated timestamp
)

var DonationRecordAccountDiscriminator = []byte{byte(AccountTypeDonationRecord), 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

type DonationRecordAccount struct {
	SubjectID        string
	LastDonor        ed25519.PublicKey
	CumulativeAmount uint64
	DonationCount    uint64
	Mint             ed25519.PublicKey // empty for native donations
	Bump             uint8
	LastUpdatedAt    int64
}

func (obj *DonationRecordAccount) Marshal() []byte {
	data := make([]byte, DonationRecordAccountSize)

	var offset int
	putDiscriminator(data, DonationRecordAccountDiscriminator, &offset)
	putFixedString(data, obj.SubjectID, MaxSubjectIDLength, &offset)
	putKey(data, obj.LastDonor, &offset)
	putUint64(data, obj.CumulativeAmount, &offset)
	putUint64(data, obj.DonationCount, &offset)
	putOptionalKey(data, obj.Mint, &offset)
	putUint8(data, obj.Bump, &offset)
	putInt64(data, obj.LastUpdatedAt, &offset)

	return data
}

func (obj *DonationRecordAccount) Unmarshal(data []byte) error {
	if len(data) < DonationRecordAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, DonationRecordAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getFixedString(data, &obj.SubjectID, MaxSubjectIDLength, &offset)
	getKey(data, &obj.LastDonor, &offset)
	getUint64(data, &obj.CumulativeAmount, &offset)
	getUint64(data, &obj.DonationCount, &offset)
	getOptionalKey(data, &obj.Mint, &offset)
	getUint8(data, &obj.Bump, &offset)
	getInt64(data, &obj.LastUpdatedAt, &offset)

	return nil
}

func (obj *DonationRecordAccount) String() string {
	mint := "native"
	if len(obj.Mint) > 0 {
		mint = base58.Encode(obj.Mint)
	}
	return fmt.Sprintf(
		"DonationRecord{subject=%s,last_donor=%s,cumulative_amount=%d,donation_count=%d,mint=%s,bump=%d,last_updated_at=%d}",
		obj.SubjectID,
		base58.Encode(obj.LastDonor),
		obj.CumulativeAmount,
		obj.DonationCount,
		mint,
		obj.Bump,
		obj.LastUpdatedAt,
	)
}
