package donate

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woofi-pets/donation-server/pkg/asset"
	"github.com/woofi-pets/donation-server/pkg/donation/ledger"
	"github.com/woofi-pets/donation-server/pkg/donation/processor"
	"github.com/woofi-pets/donation-server/pkg/solana"
	"github.com/woofi-pets/donation-server/pkg/solana/donation"
	"github.com/woofi-pets/donation-server/pkg/solana/token"
	_ "github.com/woofi-pets/donation-server/pkg/testutil"
)

func TestClient_DonateSol(t *testing.T) {
	env := setup(t)
	donor := generateKeyPair(t)
	donorWallet := donor.Public().(ed25519.PublicKey)

	env.ledger.CreateNativeAccount(donorWallet, 5*asset.LamportsPerSol)

	_, err := env.client.DonateSol(donor, "dog-42", 1*asset.LamportsPerSol)
	require.NoError(t, err)

	record, err := env.client.GetRecord("dog-42", solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 1*asset.LamportsPerSol, record.CumulativeAmount)
	assert.EqualValues(t, 1, record.DonationCount)
	assert.EqualValues(t, donorWallet, record.LastDonor)

	recipientAccount, ok := env.ledger.GetAccount(env.client.Recipient())
	require.True(t, ok)
	assert.EqualValues(t, 1*asset.LamportsPerSol, recipientAccount.Lamports)
}

func TestClient_DonateSol_BelowMinimum(t *testing.T) {
	env := setup(t)
	donor := generateKeyPair(t)

	_, err := env.client.DonateSol(donor, "dog-42", 100)
	assert.Equal(t, ErrBelowMinimum, err)
	assert.Empty(t, env.submitted)
}

func TestClient_DonateSol_FailureIsTerminal(t *testing.T) {
	env := setup(t)
	donor := generateKeyPair(t)

	// Unfunded donor: the submission must fail and no alternative
	// transfer may be attempted.
	_, err := env.client.DonateSol(donor, "dog-42", 1*asset.LamportsPerSol)
	require.Error(t, err)

	assert.Len(t, env.submitted, 1)
	_, err = env.client.GetRecord("dog-42", solana.CommitmentConfirmed)
	assert.Equal(t, ErrRecordNotFound, err)
}

func TestClient_DonateToken(t *testing.T) {
	env := setup(t)
	donor := generateKeyPair(t)
	donorWallet := donor.Public().(ed25519.PublicKey)

	donorTokenAccount, err := token.GetAssociatedAccount(donorWallet, asset.UsdcTokenMint)
	require.NoError(t, err)
	recipientTokenAccount, err := token.GetAssociatedAccount(env.client.Recipient(), asset.UsdcTokenMint)
	require.NoError(t, err)

	env.ledger.CreateNativeAccount(donorWallet, 1*asset.LamportsPerSol)
	env.ledger.CreateTokenAccount(donorTokenAccount, asset.UsdcTokenMint, donorWallet, 50_000_000)
	env.ledger.CreateTokenAccount(recipientTokenAccount, asset.UsdcTokenMint, env.client.Recipient(), 0)

	_, err = env.client.DonateToken(donor, asset.SelectorUsdc, "dog-42", 25_000_000)
	require.NoError(t, err)

	record, err := env.client.GetRecord("dog-42", solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 25_000_000, record.CumulativeAmount)
	assert.EqualValues(t, asset.UsdcTokenMint, record.Mint)
}

func TestClient_DonateToken_MissingDonorAccount(t *testing.T) {
	env := setup(t)
	donor := generateKeyPair(t)
	donorWallet := donor.Public().(ed25519.PublicKey)

	env.ledger.CreateNativeAccount(donorWallet, 1*asset.LamportsPerSol)

	// Donor has no token account for the mint: the donation must be
	// rejected before anything is submitted.
	_, err := env.client.DonateToken(donor, asset.SelectorUsdc, "dog-42", 25_000_000)
	assert.Equal(t, token.ErrAccountNotFound, errors.Cause(err))
	assert.Empty(t, env.submitted)

	_, err = env.client.GetRecord("dog-42", solana.CommitmentConfirmed)
	assert.Equal(t, ErrRecordNotFound, err)
}

func TestClient_DonateToken_WrongMintDonorAccount(t *testing.T) {
	env := setup(t)
	donor := generateKeyPair(t)
	donorWallet := donor.Public().(ed25519.PublicKey)
	otherMint := generateKeyPair(t).Public().(ed25519.PublicKey)

	donorTokenAccount, err := token.GetAssociatedAccount(donorWallet, asset.UsdcTokenMint)
	require.NoError(t, err)

	env.ledger.CreateNativeAccount(donorWallet, 1*asset.LamportsPerSol)
	env.ledger.CreateTokenAccount(donorTokenAccount, otherMint, donorWallet, 50_000_000)

	_, err = env.client.DonateToken(donor, asset.SelectorUsdc, "dog-42", 25_000_000)
	assert.Equal(t, token.ErrInvalidTokenAccount, errors.Cause(err))
	assert.Empty(t, env.submitted)
}

func TestClient_DonateToken_NativeSelectorDelegates(t *testing.T) {
	env := setup(t)
	donor := generateKeyPair(t)
	donorWallet := donor.Public().(ed25519.PublicKey)

	env.ledger.CreateNativeAccount(donorWallet, 5*asset.LamportsPerSol)

	_, err := env.client.DonateToken(donor, asset.SelectorSol, "dog-42", 1*asset.LamportsPerSol)
	require.NoError(t, err)

	record, err := env.client.GetRecord("dog-42", solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Empty(t, record.Mint)
}

func TestClient_PredictRecordAddress(t *testing.T) {
	env := setup(t)

	address, err := env.client.PredictRecordAddress("dog-42")
	require.NoError(t, err)
	assert.Len(t, address, ed25519.PublicKeySize)

	again, err := env.client.PredictRecordAddress("dog-42")
	require.NoError(t, err)
	assert.EqualValues(t, address, again)
}

func TestClient_BuildDonateSol_IsPure(t *testing.T) {
	env := setup(t)
	donorWallet := generateKeyPair(t).Public().(ed25519.PublicKey)

	instruction, err := env.client.BuildDonateSol(donorWallet, "dog-42", 1*asset.LamportsPerSol)
	require.NoError(t, err)
	assert.Empty(t, env.submitted)

	tx := solana.NewTransaction(donorWallet, instruction)
	decompiled, err := donation.DecompileDonateSol(tx.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, "dog-42", decompiled.Args.SubjectID)
	assert.EqualValues(t, 1*asset.LamportsPerSol, decompiled.Args.Amount)
	assert.EqualValues(t, env.client.Recipient(), decompiled.Accounts.Recipient)
}

func TestClient_BuildDonateToken_IsPure(t *testing.T) {
	env := setup(t)
	donorWallet := generateKeyPair(t).Public().(ed25519.PublicKey)

	instruction, err := env.client.BuildDonateToken(donorWallet, asset.SelectorUsdc, "dog-42", 5_000_000)
	require.NoError(t, err)
	assert.Empty(t, env.submitted)

	tx := solana.NewTransaction(donorWallet, instruction)
	decompiled, err := donation.DecompileDonateToken(tx.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, asset.UsdcTokenMint, decompiled.Accounts.Mint)
	assert.EqualValues(t, donorWallet, decompiled.Accounts.Authority)
}

type testEnv struct {
	ledger    *ledger.Ledger
	client    *Client
	submitted []solana.Transaction
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		ledger: ledger.New(),
	}
	recipient := generateKeyPair(t).Public().(ed25519.PublicKey)
	env.client = NewClient(&hostClient{env: env, processor: processor.New()}, recipient)
	return env
}

// hostClient implements solana.Client against an in-process ledger so
// client behavior can be exercised end to end without RPC.
type hostClient struct {
	env       *testEnv
	processor *processor.Processor
}

func (h *hostClient) GetAccountInfo(account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	stored, ok := h.env.ledger.GetAccount(account)
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return solana.AccountInfo{
		Data:     stored.Data,
		Owner:    stored.Owner,
		Lamports: stored.Lamports,
	}, nil
}

func (h *hostClient) GetBalance(account ed25519.PublicKey) (uint64, error) {
	stored, ok := h.env.ledger.GetAccount(account)
	if !ok {
		return 0, nil
	}
	return stored.Lamports, nil
}

func (h *hostClient) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	return ledger.MinimumBalanceForRentExemption(size), nil
}

func (h *hostClient) GetLatestBlockhash() (solana.Blockhash, error) {
	return solana.Blockhash{1}, nil
}

func (h *hostClient) GetSignatureStatus(solana.Signature, solana.Commitment) (*solana.SignatureStatus, error) {
	return &solana.SignatureStatus{}, nil
}

func (h *hostClient) GetSignatureStatuses([]solana.Signature) ([]*solana.SignatureStatus, error) {
	return nil, nil
}

func (h *hostClient) GetTokenAccountBalance(account ed25519.PublicKey) (uint64, uint64, error) {
	return 0, 0, nil
}

func (h *hostClient) RequestAirdrop(account ed25519.PublicKey, lamports uint64, _ solana.Commitment) (solana.Signature, error) {
	h.env.ledger.CreateNativeAccount(account, lamports)
	return solana.Signature{}, nil
}

func (h *hostClient) SubmitTransaction(tx solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	h.env.submitted = append(h.env.submitted, tx)

	var sig solana.Signature
	if len(tx.Signatures) > 0 {
		sig = tx.Signatures[0]
	}
	if err := h.processor.Submit(h.env.ledger, tx.Message); err != nil {
		return sig, err
	}
	return sig, nil
}

func generateKeyPair(t *testing.T) ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv
}
