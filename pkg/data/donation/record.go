package donation

import (
	"errors"
	"time"
)

// Record mirrors a subject's on-chain donation record for dashboard
// queries. The chain remains the source of truth; this row is refreshed
// from confirmed record accounts.
type Record struct {
	Id uint64

	SubjectID string
	Address   string

	LastDonor        string
	CumulativeAmount uint64
	DonationCount    uint64

	// Mint is empty for native donations.
	Mint string

	LastUpdatedAt time.Time
	CreatedAt     time.Time
}

func (r *Record) Validate() error {
	if len(r.SubjectID) == 0 {
		return errors.New("subject id is required")
	}

	if len(r.Address) == 0 {
		return errors.New("record address is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		SubjectID: r.SubjectID,
		Address:   r.Address,

		LastDonor:        r.LastDonor,
		CumulativeAmount: r.CumulativeAmount,
		DonationCount:    r.DonationCount,

		Mint: r.Mint,

		LastUpdatedAt: r.LastUpdatedAt,
		CreatedAt:     r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.SubjectID = r.SubjectID
	dst.Address = r.Address

	dst.LastDonor = r.LastDonor
	dst.CumulativeAmount = r.CumulativeAmount
	dst.DonationCount = r.DonationCount

	dst.Mint = r.Mint

	dst.LastUpdatedAt = r.LastUpdatedAt
	dst.CreatedAt = r.CreatedAt
}
