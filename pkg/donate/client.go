package donate

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/woofi-pets/donation-server/pkg/asset"
	"github.com/woofi-pets/donation-server/pkg/cache"
	"github.com/woofi-pets/donation-server/pkg/solana"
	"github.com/woofi-pets/donation-server/pkg/solana/donation"
	"github.com/woofi-pets/donation-server/pkg/solana/token"
)

const maxCachedAddresses = 4096

var (
	// ErrRecordNotFound indicates no donation record exists for the
	// subject yet.
	ErrRecordNotFound = errors.New("donation record not found")

	// ErrBelowMinimum indicates the amount is under the asset's
	// configured minimum donation.
	ErrBelowMinimum = errors.New("donation amount below minimum")
)

// Client submits donations for a shelter's animals and reads back their
// aggregate records.
//
// Failed submissions are terminal: the error is surfaced to the caller
// and no alternative transfer path is attempted, so every donation that
// lands is reflected in the subject's record.
type Client struct {
	log       *logrus.Entry
	sc        solana.Client
	recipient ed25519.PublicKey

	// Record addresses are deterministic per subject, so derivations
	// are cached.
	addressCache cache.Cache
}

// NewClient creates a client that directs donations to the recipient
// wallet.
func NewClient(sc solana.Client, recipient ed25519.PublicKey) *Client {
	return &Client{
		log:          logrus.StandardLogger().WithField("type", "donate/client"),
		sc:           sc,
		recipient:    recipient,
		addressCache: cache.NewCache(maxCachedAddresses),
	}
}

func (c *Client) Recipient() ed25519.PublicKey {
	return c.recipient
}

// PredictRecordAddress returns the record address a subject's donations
// will aggregate under, whether or not the record exists yet.
func (c *Client) PredictRecordAddress(subjectID string) (ed25519.PublicKey, error) {
	if cached, ok := c.addressCache.Retrieve(subjectID); ok {
		return cached.(ed25519.PublicKey), nil
	}

	address, _, err := donation.GetRecordAddress(&donation.GetRecordAddressArgs{
		SubjectID: subjectID,
	})
	if err != nil {
		return nil, err
	}

	c.addressCache.Insert(subjectID, address, 1)
	return address, nil
}

// GetRecord fetches the subject's donation record.
func (c *Client) GetRecord(subjectID string, commitment solana.Commitment) (*donation.DonationRecordAccount, error) {
	address, err := c.PredictRecordAddress(subjectID)
	if err != nil {
		return nil, err
	}

	info, err := c.sc.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrRecordNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get record account")
	}

	if !bytes.Equal(info.Owner, donation.PROGRAM_ID) {
		return nil, errors.New("record account is not owned by the donation program")
	}

	var record donation.DonationRecordAccount
	if err := record.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	return &record, nil
}

// BuildDonateSol constructs a donation instruction for lamports out of
// the donor's wallet. Pure; the caller signs and submits.
func (c *Client) BuildDonateSol(donor ed25519.PublicKey, subjectID string, lamports uint64) (solana.Instruction, error) {
	minimum, err := asset.SelectorSol.MinimumMinorUnits()
	if err != nil {
		return solana.Instruction{}, err
	}
	if lamports < minimum {
		return solana.Instruction{}, ErrBelowMinimum
	}

	record, err := c.PredictRecordAddress(subjectID)
	if err != nil {
		return solana.Instruction{}, err
	}

	return donation.NewDonateSolInstruction(
		&donation.DonateSolInstructionAccounts{
			Donor:     donor,
			Record:    record,
			Recipient: c.recipient,
		},
		&donation.DonateSolInstructionArgs{
			SubjectID: subjectID,
			Amount:    lamports,
		},
	), nil
}

// BuildDonateToken constructs a donation instruction for token minor
// units out of the donor's associated token account for the asset.
// Pure; the caller signs and submits.
func (c *Client) BuildDonateToken(donor ed25519.PublicKey, selector asset.Selector, subjectID string, amount uint64) (solana.Instruction, error) {
	if selector.IsNative() {
		return c.BuildDonateSol(donor, subjectID, amount)
	}

	config, err := selector.Config()
	if err != nil {
		return solana.Instruction{}, err
	}

	minimum, err := selector.MinimumMinorUnits()
	if err != nil {
		return solana.Instruction{}, err
	}
	if amount < minimum {
		return solana.Instruction{}, ErrBelowMinimum
	}

	record, err := c.PredictRecordAddress(subjectID)
	if err != nil {
		return solana.Instruction{}, err
	}

	donorTokenAccount, err := token.GetAssociatedAccount(donor, config.Mint)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "failed to derive donor token account")
	}
	recipientTokenAccount, err := token.GetAssociatedAccount(c.recipient, config.Mint)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "failed to derive recipient token account")
	}

	return donation.NewDonateTokenInstruction(
		&donation.DonateTokenInstructionAccounts{
			Donor:                 donor,
			Record:                record,
			Mint:                  config.Mint,
			DonorTokenAccount:     donorTokenAccount,
			RecipientTokenAccount: recipientTokenAccount,
			Authority:             donor,
		},
		&donation.DonateTokenInstructionArgs{
			SubjectID: subjectID,
			Amount:    amount,
		},
	), nil
}

// DonateSol builds, signs, and submits a native donation.
func (c *Client) DonateSol(donor ed25519.PrivateKey, subjectID string, lamports uint64) (solana.Signature, error) {
	donorWallet := donor.Public().(ed25519.PublicKey)

	instruction, err := c.BuildDonateSol(donorWallet, subjectID, lamports)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.Submit(donorWallet, instruction, donor)
}

// DonateToken builds, signs, and submits a token donation.
//
// The donor's associated token account is validated before submission,
// so a missing or misconfigured source account fails here rather than
// on-chain.
func (c *Client) DonateToken(donor ed25519.PrivateKey, selector asset.Selector, subjectID string, amount uint64) (solana.Signature, error) {
	donorWallet := donor.Public().(ed25519.PublicKey)

	instruction, err := c.BuildDonateToken(donorWallet, selector, subjectID, amount)
	if err != nil {
		return solana.Signature{}, err
	}

	if !selector.IsNative() {
		config, err := selector.Config()
		if err != nil {
			return solana.Signature{}, err
		}
		donorTokenAccount, err := token.GetAssociatedAccount(donorWallet, config.Mint)
		if err != nil {
			return solana.Signature{}, errors.Wrap(err, "failed to derive donor token account")
		}

		tokenClient := token.NewClient(c.sc, config.Mint)
		if _, err := tokenClient.GetAccount(donorTokenAccount, solana.CommitmentConfirmed); err != nil {
			return solana.Signature{}, errors.Wrap(err, "failed to validate donor token account")
		}
	}

	return c.Submit(donorWallet, instruction, donor)
}

// Submit signs and submits a built instruction. Submission failures are
// surfaced as-is; there is no alternative transfer path.
func (c *Client) Submit(payer ed25519.PublicKey, instruction solana.Instruction, signers ...ed25519.PrivateKey) (solana.Signature, error) {
	tx := solana.NewTransaction(payer, instruction)

	blockhash, err := c.sc.GetLatestBlockhash()
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to get latest blockhash")
	}
	tx.SetBlockhash(blockhash)

	if err := tx.Sign(signers...); err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to sign transaction")
	}

	sig, err := c.sc.SubmitTransaction(tx, solana.CommitmentConfirmed)
	if err != nil {
		c.log.WithError(err).WithField("signature", base58.Encode(sig[:])).Warn("donation submission failed")
		return sig, err
	}
	return sig, nil
}
