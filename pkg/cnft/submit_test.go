package cnft

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
)

type mockSolanaClient struct {
	mu sync.Mutex

	submitCalls int
	submitErr   func(call int) error
	statusErr   error
	statuses    func(solana.Signature) *solana.SignatureStatus

	// statusesResp overrides the per-signature mapping with a raw response.
	statusesResp func([]solana.Signature) ([]*solana.SignatureStatus, error)
}

func (m *mockSolanaClient) GetLatestBlockhash() (solana.Blockhash, error) {
	return solana.Blockhash{1}, nil
}

func (m *mockSolanaClient) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submitCalls++
	if m.submitErr != nil {
		if err := m.submitErr(m.submitCalls); err != nil {
			return solana.Signature{}, err
		}
	}
	return txn.Signatures[0], nil
}

func (m *mockSolanaClient) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if m.statusesResp != nil {
		return m.statusesResp(sigs)
	}

	statuses := make([]*solana.SignatureStatus, len(sigs))
	if m.statuses != nil {
		for i, sig := range sigs {
			statuses[i] = m.statuses(sig)
		}
	}
	return statuses, nil
}

func (m *mockSolanaClient) getSubmitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitCalls
}

func testSubmitPolicy() SubmitPolicy {
	return SubmitPolicy{
		MaxSendAttempts:     3,
		SendBackoff:         time.Millisecond,
		ConfirmationTimeout: 50 * time.Millisecond,
		PollInterval:        time.Millisecond,
		Commitment:          solana.CommitmentConfirmed,
	}
}

func testKeypair(t *testing.T) ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv
}

func testSignedTransaction(t *testing.T, payer ed25519.PrivateKey) *solana.Transaction {
	program := publicKeyOf(testKeypair(t))

	instruction := solana.NewInstruction(
		program,
		[]byte{1, 2, 3},
		solana.NewAccountMeta(publicKeyOf(payer), true),
	)

	txn := solana.NewTransaction(publicKeyOf(payer), instruction)
	txn.SetBlockhash(solana.Blockhash{1})
	require.NoError(t, txn.Sign(payer))

	return &txn
}

func confirmedStatus(solana.Signature) *solana.SignatureStatus {
	return &solana.SignatureStatus{ConfirmationStatus: "confirmed"}
}

func TestSubmit_MissingSigner(t *testing.T) {
	mock := &mockSolanaClient{}
	client := NewWithClient(mock, testSubmitPolicy())

	payer := testKeypair(t)
	txn := testSignedTransaction(t, payer)
	txn.Signatures[0] = solana.Signature{}

	submission, err := client.Submit(context.Background(), txn)
	assert.ErrorIs(t, err, ErrMissingSigner)
	assert.Equal(t, StateBuilt, submission.State)

	// Validation failures never reach the network
	assert.Equal(t, 0, mock.getSubmitCalls())
}

func TestSubmit_Confirmed(t *testing.T) {
	polls := 0
	mock := &mockSolanaClient{}
	mock.statuses = func(sig solana.Signature) *solana.SignatureStatus {
		polls++
		if polls < 3 {
			return nil
		}
		return confirmedStatus(sig)
	}
	client := NewWithClient(mock, testSubmitPolicy())

	txn := testSignedTransaction(t, testKeypair(t))

	submission, err := client.Submit(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, submission.State)
	assert.Equal(t, txn.Signatures[0], submission.Signature)
	assert.Equal(t, 1, mock.getSubmitCalls())
}

func TestSubmit_TransportRetriesExactlyToLimit(t *testing.T) {
	mock := &mockSolanaClient{
		submitErr: func(int) error {
			return errors.New("connection reset")
		},
	}
	client := NewWithClient(mock, testSubmitPolicy())

	txn := testSignedTransaction(t, testKeypair(t))

	submission, err := client.Submit(context.Background(), txn)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.EqualValues(t, 3, transportErr.Attempts)
	assert.Equal(t, 3, mock.getSubmitCalls())
	assert.Equal(t, StateBuilt, submission.State)
}

func TestSubmit_TransientTransportFailureRecovers(t *testing.T) {
	mock := &mockSolanaClient{
		submitErr: func(call int) error {
			if call < 3 {
				return errors.New("connection reset")
			}
			return nil
		},
		statuses: confirmedStatus,
	}
	client := NewWithClient(mock, testSubmitPolicy())

	txn := testSignedTransaction(t, testKeypair(t))

	submission, err := client.Submit(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, submission.State)
	assert.Equal(t, 3, mock.getSubmitCalls())
}

func TestSubmit_RejectedOnDelivery(t *testing.T) {
	mock := &mockSolanaClient{
		submitErr: func(int) error {
			return solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
		},
	}
	client := NewWithClient(mock, testSubmitPolicy())

	txn := testSignedTransaction(t, testKeypair(t))

	submission, err := client.Submit(context.Background(), txn)

	var rejectedErr *RejectedError
	require.ErrorAs(t, err, &rejectedErr)
	assert.Equal(t, solana.TransactionErrorBlockhashNotFound, rejectedErr.Detail.ErrorKey())
	assert.Equal(t, StateRejected, submission.State)

	// Rejections are never retried
	assert.Equal(t, 1, mock.getSubmitCalls())
}

func TestSubmit_RejectedDuringConfirmation(t *testing.T) {
	mock := &mockSolanaClient{}
	mock.statuses = func(solana.Signature) *solana.SignatureStatus {
		return &solana.SignatureStatus{
			ErrorResult: solana.NewTransactionError(solana.TransactionErrorInstructionError),
		}
	}
	client := NewWithClient(mock, testSubmitPolicy())

	txn := testSignedTransaction(t, testKeypair(t))

	submission, err := client.Submit(context.Background(), txn)

	var rejectedErr *RejectedError
	require.ErrorAs(t, err, &rejectedErr)
	assert.Equal(t, StateRejected, submission.State)
	assert.NotErrorIs(t, err, ErrExpired)
}

func TestSubmit_ExpiredIsNotRejected(t *testing.T) {
	mock := &mockSolanaClient{}
	client := NewWithClient(mock, testSubmitPolicy())

	txn := testSignedTransaction(t, testKeypair(t))

	submission, err := client.Submit(context.Background(), txn)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, StateExpired, submission.State)

	var rejectedErr *RejectedError
	assert.False(t, errors.As(err, &rejectedErr))

	// The acknowledged transaction was never re-sent while polling
	assert.Equal(t, 1, mock.getSubmitCalls())
}

func TestSubmit_CanceledAfterAcknowledgement(t *testing.T) {
	policy := testSubmitPolicy()
	policy.ConfirmationTimeout = time.Minute

	mock := &mockSolanaClient{}
	client := NewWithClient(mock, policy)

	txn := testSignedTransaction(t, testKeypair(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	submission, err := client.Submit(ctx, txn)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, StateExpired, submission.State)
	assert.Equal(t, 1, mock.getSubmitCalls())
}

func TestSubmit_ShortStatusResponse(t *testing.T) {
	// An implementation returning fewer entries than requested reads as
	// "not yet visible", burning the confirmation window.
	mock := &mockSolanaClient{
		statusesResp: func([]solana.Signature) ([]*solana.SignatureStatus, error) {
			return []*solana.SignatureStatus{}, nil
		},
	}
	client := NewWithClient(mock, testSubmitPolicy())

	txn := testSignedTransaction(t, testKeypair(t))

	submission, err := client.Submit(context.Background(), txn)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, StateExpired, submission.State)
	assert.Equal(t, 1, mock.getSubmitCalls())
}

func TestSubmit_StatusLookupFailuresBurnTheWindow(t *testing.T) {
	mock := &mockSolanaClient{
		statusErr: errors.New("connection reset"),
	}
	client := NewWithClient(mock, testSubmitPolicy())

	txn := testSignedTransaction(t, testKeypair(t))

	submission, err := client.Submit(context.Background(), txn)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, StateExpired, submission.State)
}
