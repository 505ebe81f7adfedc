package txkit

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"testing"

	"github.com/catmcgee/kit-go/events"
	"github.com/catmcgee/kit-go/signer"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preparePartial(t *testing.T, mock *mockRPCClient, publisher events.Publisher) (*Preparer, *Prepared, *signer.Keypair) {
	t.Helper()
	preparer := newTestPreparer(mock, publisher)
	kp := newTestKeypair()

	prepared, err := preparer.Prepare(context.Background(), PrepareRequest{
		Instructions:     []solana.Instruction{transferFrom(kp)},
		Authority:        AuthoritySigner(kp),
		ComputeUnitLimit: ComputeUnits(200_000),
	})
	require.NoError(t, err)
	return preparer, prepared, kp
}

func TestSign_ProducesVerifiableSignature(t *testing.T) {
	mock := &mockRPCClient{blockhash: testBlockhash}
	preparer, prepared, _ := preparePartial(t, mock, nil)

	tx, err := preparer.Sign(context.Background(), prepared, nil)
	require.NoError(t, err)

	require.Len(t, tx.Signatures, 1)
	require.NoError(t, tx.VerifySignatures())
}

func TestSign_DoesNotMutatePrepared(t *testing.T) {
	mock := &mockRPCClient{blockhash: testBlockhash}
	preparer, prepared, _ := preparePartial(t, mock, nil)

	_, err := preparer.Sign(context.Background(), prepared, nil)
	require.NoError(t, err)

	assert.Empty(t, prepared.Message().Signatures, "signing must not touch the prepared message")
}

func TestSign_NoSignerAvailable(t *testing.T) {
	mock := &mockRPCClient{blockhash: testBlockhash}
	preparer := newTestPreparer(mock, nil)
	kp := newTestKeypair()

	// Fee payer resolved by address only: no signer attached.
	prepared, err := preparer.Prepare(context.Background(), PrepareRequest{
		Instructions: []solana.Instruction{transferFrom(kp)},
		FeePayer:     FeePayerAddress(solana.NewWallet().PublicKey()),
	})
	require.NoError(t, err)

	_, err = preparer.Sign(context.Background(), prepared, nil)
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestSign_AdditionalSignersForSponsoredTransaction(t *testing.T) {
	mock := &mockRPCClient{blockhash: testBlockhash}
	preparer := newTestPreparer(mock, nil)

	authority := newTestKeypair()
	sponsor := newTestKeypair()

	prepared, err := preparer.Prepare(context.Background(), PrepareRequest{
		Instructions: []solana.Instruction{transferFrom(authority)},
		Authority:    AuthoritySigner(authority),
		FeePayer:     FeePayerAddress(sponsor.Address()),
	})
	require.NoError(t, err)
	require.Nil(t, prepared.FeePayerSigner())

	tx, err := preparer.Sign(context.Background(), prepared, &SignOptions{
		AdditionalSigners: []signer.TransactionSigner{sponsor, authority},
	})
	require.NoError(t, err)

	// Sponsor pays, authority authorizes the transfer: two signatures.
	require.Len(t, tx.Signatures, 2)
	require.NoError(t, tx.VerifySignatures())
}

func TestSign_Cancelled(t *testing.T) {
	mock := &mockRPCClient{blockhash: testBlockhash}
	preparer, prepared, _ := preparePartial(t, mock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := preparer.Sign(ctx, prepared, nil)
	var cerr *CancelledError
	require.ErrorAs(t, err, &cerr)
}

func TestToWire_RoundTripsToSignedMessage(t *testing.T) {
	mock := &mockRPCClient{blockhash: testBlockhash}
	preparer, prepared, _ := preparePartial(t, mock, nil)

	signed, err := preparer.Sign(context.Background(), prepared, nil)
	require.NoError(t, err)

	wire, err := preparer.ToWire(context.Background(), prepared, nil)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(wire)
	require.NoError(t, err)

	decoded, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	require.NoError(t, err)

	// The wire payload decodes to a structurally identical signed message.
	assert.Equal(t, signed.Signatures, decoded.Signatures)

	wantMsg, err := signed.Message.MarshalBinary()
	require.NoError(t, err)
	gotMsg, err := decoded.Message.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, wantMsg, gotMsg)
}

func TestSend_PartialModeSubmitsViaRPC(t *testing.T) {
	publisher := events.NewMockPublisher()
	mock := &mockRPCClient{blockhash: testBlockhash, sendSig: testSignature}
	preparer, prepared, _ := preparePartial(t, mock, publisher)

	maxRetries := uint64(5)
	sig, err := preparer.Send(context.Background(), prepared, &SendOptions{
		Commitment:    rpc.CommitmentFinalized,
		MaxRetries:    &maxRetries,
		SkipPreflight: true,
	})
	require.NoError(t, err)
	assert.Equal(t, testSignature, sig)

	require.Equal(t, 1, mock.sendCalls)
	assert.Equal(t, solana.EncodingBase64, mock.lastSendOpts.Encoding)
	assert.Equal(t, rpc.CommitmentFinalized, mock.lastSendOpts.PreflightCommitment)
	assert.True(t, mock.lastSendOpts.SkipPreflight)
	require.NotNil(t, mock.lastSendOpts.MaxRetries)
	assert.Equal(t, uint(5), *mock.lastSendOpts.MaxRetries)

	// The submitted payload is the wire-encoded signed transaction.
	_, err = base64.StdEncoding.DecodeString(mock.lastEncodedTx)
	require.NoError(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, testSignature.String(), published[0].Signature)
	assert.Equal(t, string(signer.ModePartial), published[0].Mode)
	assert.Equal(t, string(rpc.CommitmentFinalized), published[0].Commitment)
}

func TestSend_DefaultsToPreparedCommitment(t *testing.T) {
	mock := &mockRPCClient{blockhash: testBlockhash, sendSig: testSignature}
	preparer, prepared, _ := preparePartial(t, mock, nil)

	_, err := preparer.Send(context.Background(), prepared, nil)
	require.NoError(t, err)
	assert.Equal(t, prepared.Commitment(), mock.lastSendOpts.PreflightCommitment)
}

func TestSend_SendModeDelegatesToSigner(t *testing.T) {
	publisher := events.NewMockPublisher()
	mock := &mockRPCClient{blockhash: testBlockhash}
	preparer := newTestPreparer(mock, publisher)

	sender := &sendingSigner{Keypair: newTestKeypair(), sig: testSignature}
	prepared, err := preparer.Prepare(context.Background(), PrepareRequest{
		Instructions: []solana.Instruction{transferFrom(sender.Keypair)},
		Authority:    AuthoritySigner(sender),
	})
	require.NoError(t, err)
	require.Equal(t, signer.ModeSend, prepared.Mode())

	sig, err := preparer.Send(context.Background(), prepared, nil)
	require.NoError(t, err)
	assert.Equal(t, testSignature, sig)

	// The signer broadcast; the RPC transport was never used for sending.
	assert.Equal(t, 1, sender.signAndSends)
	assert.Equal(t, 0, mock.sendCalls)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, string(signer.ModeSend), published[0].Mode)
}

func TestSend_RPCErrorPropagatesUnmodified(t *testing.T) {
	transportErr := errors.New("rpc: blockhash not found")
	mock := &mockRPCClient{blockhash: testBlockhash, sendErr: transportErr}
	preparer, prepared, _ := preparePartial(t, mock, nil)

	_, err := preparer.Send(context.Background(), prepared, nil)
	require.ErrorIs(t, err, transportErr)
}

func TestSend_PublishFailureDoesNotFailSend(t *testing.T) {
	publisher := events.NewMockPublisher()
	publisher.SetPublishError(errors.New("nats down"))

	mock := &mockRPCClient{blockhash: testBlockhash, sendSig: testSignature}
	preparer, prepared, _ := preparePartial(t, mock, publisher)

	sig, err := preparer.Send(context.Background(), prepared, nil)
	require.NoError(t, err)
	assert.Equal(t, testSignature, sig)
}

func TestSign_VersionedMessageSurvivesCopy(t *testing.T) {
	mock := &mockRPCClient{blockhash: testBlockhash}
	preparer := newTestPreparer(mock, nil)
	kp := newTestKeypair()

	prepared, err := preparer.Prepare(context.Background(), PrepareRequest{
		Instructions: []solana.Instruction{transferFrom(kp)},
		Authority:    AuthoritySigner(kp),
		Version:      VersionV0,
	})
	require.NoError(t, err)

	signed, err := preparer.Sign(context.Background(), prepared, nil)
	require.NoError(t, err)
	require.NoError(t, signed.VerifySignatures())

	// Signing clones the message; the version flag and message bytes must
	// come through unchanged.
	assert.Equal(t, solana.MessageVersionV0, signed.Message.GetVersion())

	want, err := prepared.Message().Message.MarshalBinary()
	require.NoError(t, err)
	got, err := signed.Message.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNormalizeMaxRetries(t *testing.T) {
	assert.Equal(t, uint(5), normalizeMaxRetries(5))
	// Values beyond the platform uint range clamp instead of truncating.
	assert.Equal(t, uint(math.MaxUint), normalizeMaxRetries(math.MaxUint64))
}
