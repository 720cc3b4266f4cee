package cnft

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
	"github.com/cnft-labs/bubblegum-go/pkg/solana/bubblegum"
)

// The lower layers own the validation sentinels. They're aliased here so
// callers of the operation boundary can match every failure mode against a
// single package.
var (
	ErrDerivationExhausted       = solana.ErrDerivationExhausted
	ErrInvalidMetadata           = bubblegum.ErrInvalidMetadata
	ErrUnsupportedTreeParameters = bubblegum.ErrUnsupportedTreeParameters
	ErrMalformedProof            = bubblegum.ErrMalformedProof

	// ErrMissingSigner indicates a transaction about to be submitted still
	// has a required signature slot unfilled.
	ErrMissingSigner = errors.New("missing signer")

	// ErrExpired indicates an acknowledged transaction that was never
	// observed as confirmed or rejected within the confirmation window. Its
	// final fate on chain is unknown.
	ErrExpired = errors.New("transaction expired")
)

// TransportError indicates the transaction could not be delivered to the
// network. No node acknowledged it, so it is safe to rebuild and resubmit.
type TransportError struct {
	Attempts uint
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// RejectedError indicates the network acknowledged and then rejected the
// transaction. Rejections are deterministic for a given ledger state and
// are never retried.
type RejectedError struct {
	Detail *solana.TransactionError
}

func (e *RejectedError) Error() string {
	if e.Detail == nil {
		return "transaction rejected"
	}
	return fmt.Sprintf("transaction rejected: %v", e.Detail)
}

func (e *RejectedError) Unwrap() error {
	if e.Detail == nil {
		return nil
	}
	return e.Detail
}
