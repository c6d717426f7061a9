package processor

import (
	"bytes"
	"crypto/ed25519"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/woofi-pets/donation-server/pkg/donation/ledger"
	"github.com/woofi-pets/donation-server/pkg/solana"
	"github.com/woofi-pets/donation-server/pkg/solana/donation"
)

// Processor validates donation instructions and applies their effects
// against a host ledger. It is the only component that writes donation
// records.
type Processor struct {
	log *logrus.Entry
}

func New() *Processor {
	return &Processor{
		log: logrus.StandardLogger().WithField("type", "donation/processor"),
	}
}

// Submit executes every donation instruction in the message as a single
// all-or-nothing unit of work against the ledger.
func (p *Processor) Submit(l *ledger.Ledger, m solana.Message) error {
	return l.ExecuteInUnit(m.Accounts, func(u *ledger.Unit) error {
		return p.Process(u, m)
	})
}

// Process applies the message's donation instructions within an
// already-open unit of work. Any error is terminal for the whole unit.
func (p *Processor) Process(u *ledger.Unit, m solana.Message) error {
	for index, instruction := range m.Instructions {
		if !bytes.Equal(m.Accounts[instruction.ProgramIndex], donation.PROGRAM_ID) {
			continue
		}
		if len(instruction.Data) == 0 {
			return donation.ErrInvalidInstructionData
		}

		var err error
		switch donation.InstructionType(instruction.Data[0]) {
		case donation.InstructionTypeDonateSol:
			err = p.processDonateSol(u, m, index)
		case donation.InstructionTypeDonateToken:
			err = p.processDonateToken(u, m, index)
		default:
			err = donation.ErrInvalidInstructionData
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// assetTransfer abstracts how a donation moves value. Native and token
// donations share one processing pipeline and differ only here.
type assetTransfer interface {
	// prepare validates asset-specific account identity (token account
	// ownership, mint agreement). Runs before the amount is inspected.
	prepare(u *ledger.Unit) error

	// checkFunds verifies the donor side can cover the donation.
	// extraNative is the rent reserve owed when the record does not
	// exist yet; only native transfers draw it from the same balance.
	checkFunds(u *ledger.Unit, extraNative uint64) error

	// execute moves the donated amount.
	execute(u *ledger.Unit) error
}

// donationRequest is one decompiled donation, normalized so the
// processing pipeline is asset-agnostic.
type donationRequest struct {
	kind      string
	subjectID string
	amount    uint64

	signer    ed25519.PublicKey // must have signed the message
	record    ed25519.PublicKey // client-supplied record address
	donor     ed25519.PublicKey // recorded as the last donor
	rentPayer ed25519.PublicKey // funds the record on first donation
	mint      ed25519.PublicKey // nil for native

	transfer assetTransfer
}

func (p *Processor) processDonateSol(u *ledger.Unit, m solana.Message, index int) error {
	decompiled, err := donation.DecompileDonateSol(m, index)
	if err != nil {
		return err
	}

	return p.processDonation(u, m, donationRequest{
		kind:      "donate_sol",
		subjectID: decompiled.Args.SubjectID,
		amount:    decompiled.Args.Amount,
		signer:    decompiled.Accounts.Donor,
		record:    decompiled.Accounts.Record,
		donor:     decompiled.Accounts.Donor,
		rentPayer: decompiled.Accounts.Donor,
		transfer: &nativeTransfer{
			donor:     decompiled.Accounts.Donor,
			recipient: decompiled.Accounts.Recipient,
			amount:    decompiled.Args.Amount,
		},
	})
}

func (p *Processor) processDonateToken(u *ledger.Unit, m solana.Message, index int) error {
	decompiled, err := donation.DecompileDonateToken(m, index)
	if err != nil {
		return err
	}

	return p.processDonation(u, m, donationRequest{
		kind:      "donate_token",
		subjectID: decompiled.Args.SubjectID,
		amount:    decompiled.Args.Amount,
		signer:    decompiled.Accounts.Authority,
		record:    decompiled.Accounts.Record,
		donor:     decompiled.Accounts.Donor,
		rentPayer: decompiled.Accounts.Authority,
		mint:      decompiled.Accounts.Mint,
		transfer: &tokenTransfer{
			mint:        decompiled.Accounts.Mint,
			source:      decompiled.Accounts.DonorTokenAccount,
			destination: decompiled.Accounts.RecipientTokenAccount,
			authority:   decompiled.Accounts.Authority,
			rentPayer:   decompiled.Accounts.Authority,
			amount:      decompiled.Args.Amount,
		},
	})
}

// processDonation is the shared pipeline for every donation variant.
// Validation order matters: authorization, then account identity, then
// amount, then funding.
func (p *Processor) processDonation(u *ledger.Unit, m solana.Message, req donationRequest) error {
	op := p.newOp(req.kind, req.subjectID, req.amount)

	if !isSigner(m, req.signer) {
		return op.reject(ErrUnauthorized)
	}

	record, bump, err := expectedRecord(req.subjectID, req.record)
	if err != nil {
		return op.reject(err)
	}

	if err := req.transfer.prepare(u); err != nil {
		return op.reject(err)
	}

	if req.amount == 0 {
		return op.reject(ErrInvalidAmount)
	}

	recordMissing := false
	var rent uint64
	if _, err := u.GetAccount(record); err == ledger.ErrAccountNotFound {
		recordMissing = true
		rent = recordRent()
	} else if err != nil {
		return op.reject(translateLedgerError(err))
	}

	if err := req.transfer.checkFunds(u, rent); err != nil {
		return op.reject(err)
	}

	op.validated()

	if recordMissing {
		// First donation to this subject: the rent payer funds the
		// record's reserve out of its native balance.
		if err := u.TransferNative(req.rentPayer, record, rent); err != nil {
			return op.reject(translateLedgerError(err))
		}
	}

	if err := req.transfer.execute(u); err != nil {
		return op.reject(err)
	}

	if err := p.applyRecord(u, record, bump, req.subjectID, req.donor, req.amount, req.mint); err != nil {
		return op.reject(err)
	}

	op.applied()
	return nil
}

type nativeTransfer struct {
	donor     ed25519.PublicKey
	recipient ed25519.PublicKey
	amount    uint64
}

func (t *nativeTransfer) prepare(u *ledger.Unit) error {
	return nil
}

func (t *nativeTransfer) checkFunds(u *ledger.Unit, extraNative uint64) error {
	donor, err := u.GetAccount(t.donor)
	if err != nil {
		return translateLedgerError(err)
	}
	if t.amount > math.MaxUint64-extraNative {
		return ErrInsufficientFunds
	}
	if donor.Lamports < t.amount+extraNative {
		return ErrInsufficientFunds
	}
	return nil
}

func (t *nativeTransfer) execute(u *ledger.Unit) error {
	if err := u.TransferNative(t.donor, t.recipient, t.amount); err != nil {
		return translateLedgerError(err)
	}
	return nil
}

type tokenTransfer struct {
	mint        ed25519.PublicKey
	source      ed25519.PublicKey
	destination ed25519.PublicKey
	authority   ed25519.PublicKey
	rentPayer   ed25519.PublicKey
	amount      uint64
}

func (t *tokenTransfer) prepare(u *ledger.Unit) error {
	source, err := u.TokenAccount(t.source)
	if err != nil {
		return translateLedgerError(err)
	}
	destination, err := u.TokenAccount(t.destination)
	if err != nil {
		return translateLedgerError(err)
	}
	if !bytes.Equal(source.Mint, t.mint) || !bytes.Equal(destination.Mint, t.mint) {
		return ErrMintMismatch
	}
	return nil
}

func (t *tokenTransfer) checkFunds(u *ledger.Unit, extraNative uint64) error {
	source, err := u.TokenAccount(t.source)
	if err != nil {
		return translateLedgerError(err)
	}
	if source.Amount < t.amount {
		return ErrInsufficientFunds
	}

	// The record's rent reserve comes out of the rent payer's native
	// balance, so it is part of the funding check.
	if extraNative > 0 {
		payer, err := u.GetAccount(t.rentPayer)
		if err != nil {
			return translateLedgerError(err)
		}
		if payer.Lamports < extraNative {
			return ErrInsufficientFunds
		}
	}
	return nil
}

func (t *tokenTransfer) execute(u *ledger.Unit) error {
	err := u.TransferToken(t.mint, t.source, t.destination, t.authority, t.amount)
	if err != nil {
		return translateLedgerError(err)
	}
	return nil
}

// applyRecord creates or updates the subject's donation record. The
// aggregate only grows; checked arithmetic rejects rather than wraps.
func (p *Processor) applyRecord(u *ledger.Unit, address ed25519.PublicKey, bump uint8, subjectID string, donor ed25519.PublicKey, amount uint64, mint ed25519.PublicKey) error {
	account, err := u.GetAccount(address)
	if err != nil {
		return translateLedgerError(err)
	}

	var state donation.DonationRecordAccount
	if len(account.Data) == 0 {
		// Freshly funded within this unit; claim it for the program.
		account.Owner = donation.PROGRAM_ID
		state = donation.DonationRecordAccount{
			SubjectID: subjectID,
			Bump:      bump,
		}
	} else {
		if !bytes.Equal(account.Owner, donation.PROGRAM_ID) {
			return ErrAccountOwnerMismatch
		}
		if err := state.Unmarshal(account.Data); err != nil {
			return err
		}
		// The subject id is immutable after creation; derivation
		// guarantees this matches, but a corrupted record must not be
		// silently re-keyed.
		if state.SubjectID != subjectID {
			return ErrAddressMismatch
		}
	}

	if state.CumulativeAmount > math.MaxUint64-amount {
		return ErrOverflow
	}
	if state.DonationCount == math.MaxUint64 {
		return ErrOverflow
	}

	state.CumulativeAmount += amount
	state.DonationCount++
	state.LastDonor = donor
	state.Mint = mint
	state.LastUpdatedAt = u.Timestamp()

	account.Data = state.Marshal()
	return u.PutAccount(address, account)
}

func recordRent() uint64 {
	return ledger.MinimumBalanceForRentExemption(donation.DonationRecordAccountSize)
}

// expectedRecord recomputes the record address for the subject and
// rejects any request whose supplied address disagrees.
func expectedRecord(subjectID string, supplied ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	if len(subjectID) == 0 || len(subjectID) > donation.MaxSubjectIDLength {
		return nil, 0, ErrAddressMismatch
	}
	// The record codec pads the subject id with NUL, so an id containing
	// NUL cannot round-trip through the stored record.
	if strings.IndexByte(subjectID, 0) >= 0 {
		return nil, 0, ErrAddressMismatch
	}

	expected, bump, err := donation.GetRecordAddress(&donation.GetRecordAddressArgs{SubjectID: subjectID})
	if err != nil {
		return nil, 0, ErrAddressMismatch
	}
	if !bytes.Equal(expected, supplied) {
		return nil, 0, ErrAddressMismatch
	}
	return expected, bump, nil
}

// isSigner reports whether the account signed the message. Signers
// occupy the first NumSignatures slots of the account table.
func isSigner(m solana.Message, account ed25519.PublicKey) bool {
	for i := 0; i < int(m.Header.NumSignatures) && i < len(m.Accounts); i++ {
		if bytes.Equal(m.Accounts[i], account) {
			return true
		}
	}
	return false
}

func translateLedgerError(err error) error {
	switch errors.Cause(err) {
	case ledger.ErrInsufficientFunds, ledger.ErrAccountNotFound:
		return ErrInsufficientFunds
	case ledger.ErrMintMismatch:
		return ErrMintMismatch
	case ledger.ErrOwnerMismatch, ledger.ErrInvalidTokenAccount:
		return ErrAccountOwnerMismatch
	case ledger.ErrNotAuthorized:
		return ErrUnauthorized
	case ledger.ErrOverflow:
		return ErrOverflow
	default:
		return err
	}
}

type operation struct {
	log   *logrus.Entry
	state State
}

func (p *Processor) newOp(kind, subjectID string, amount uint64) *operation {
	op := &operation{
		log: p.log.WithFields(logrus.Fields{
			"instruction": kind,
			"subject":     subjectID,
			"amount":      amount,
		}),
		state: StateReceived,
	}
	op.log.WithField("state", op.state.String()).Debug("processing donation")
	return op
}

func (op *operation) validated() {
	op.state = StateValidated
	op.log.WithField("state", op.state.String()).Debug("donation validated")
}

func (op *operation) applied() {
	op.state = StateApplied
	op.log.WithField("state", op.state.String()).Debug("donation applied")
}

func (op *operation) reject(err error) error {
	op.state = StateRejected
	op.log.WithError(err).WithField("state", op.state.String()).Warn("donation rejected")
	return err
}
