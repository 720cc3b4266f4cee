package cnft

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
)

// State tracks a transaction through the submission pipeline.
//
// Built transitions to Sent once any node acknowledges delivery. Sent
// transitions to exactly one of Confirmed, Expired or Rejected.
type State uint8

const (
	StateBuilt State = iota
	StateSent
	StateConfirmed
	StateExpired
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSent:
		return "sent"
	case StateConfirmed:
		return "confirmed"
	case StateExpired:
		return "expired"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// SubmitPolicy bounds the delivery and confirmation behavior of a single
// transaction submission.
type SubmitPolicy struct {
	// MaxSendAttempts bounds delivery attempts for transport failures.
	// Sending stops the moment a node acknowledges the transaction; an
	// acknowledged transaction is never re-sent.
	MaxSendAttempts uint

	// SendBackoff is the pause between delivery attempts.
	SendBackoff time.Duration

	// ConfirmationTimeout bounds how long an acknowledged transaction is
	// polled for before it is declared expired.
	ConfirmationTimeout time.Duration

	// PollInterval is the pause between signature status polls.
	PollInterval time.Duration

	// Commitment is the level a transaction must reach to be considered
	// confirmed.
	Commitment solana.Commitment
}

func DefaultSubmitPolicy() SubmitPolicy {
	return SubmitPolicy{
		MaxSendAttempts:     3,
		SendBackoff:         500 * time.Millisecond,
		ConfirmationTimeout: time.Minute,
		PollInterval:        solana.PollRate,
		Commitment:          solana.CommitmentConfirmed,
	}
}

// Submission is the observable outcome of submitting one transaction. The
// state is always terminal (or Built, when validation failed before any
// network activity) by the time it is returned.
type Submission struct {
	Signature solana.Signature
	State     State
}

// Submit delivers a fully signed transaction and drives it to a terminal
// state. Validation failures surface before any I/O. Transport failures are
// retried with backoff up to the policy's attempt limit; acknowledged
// transactions are polled until confirmed, rejected, or the confirmation
// window closes.
func (c *Client) Submit(ctx context.Context, txn *solana.Transaction) (*Submission, error) {
	submission := &Submission{State: StateBuilt}

	if missing := txn.MissingSigners(); len(missing) > 0 {
		return submission, errors.Wrapf(ErrMissingSigner, "%d signature slots unfilled", len(missing))
	}

	log := c.log.WithField("method", "Submit")

	var sig solana.Signature
	var lastErr error
	for attempts := uint(1); attempts <= c.policy.MaxSendAttempts; attempts++ {
		var err error
		sig, err = c.solana.SubmitTransaction(*txn, c.policy.Commitment)
		if err == nil {
			lastErr = nil
			break
		}

		// Rejections are deterministic and never retried
		if txErr, ok := err.(*solana.TransactionError); ok {
			submission.Signature = sig
			submission.State = StateRejected
			return submission, &RejectedError{Detail: txErr}
		}

		lastErr = err
		log.WithError(err).WithField("attempts", attempts).Warn("transaction delivery failed")

		if attempts == c.policy.MaxSendAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return submission, &TransportError{Attempts: attempts, Cause: ctx.Err()}
		case <-time.After(c.policy.SendBackoff):
		}
	}
	if lastErr != nil {
		return submission, &TransportError{Attempts: c.policy.MaxSendAttempts, Cause: lastErr}
	}

	submission.Signature = sig
	submission.State = StateSent

	deadline := time.Now().Add(c.policy.ConfirmationTimeout)
	for {
		statuses, err := c.solana.GetSignatureStatuses([]solana.Signature{sig})
		if err != nil {
			// Status lookups are read-only; transient failures just burn
			// part of the confirmation window.
			log.WithError(err).Warn("signature status lookup failed")
		} else if len(statuses) > 0 && statuses[0] != nil {
			status := statuses[0]
			if status.ErrorResult != nil {
				submission.State = StateRejected
				return submission, &RejectedError{Detail: status.ErrorResult}
			}

			var confirmed bool
			switch c.policy.Commitment {
			case solana.CommitmentProcessed:
				confirmed = true
			case solana.CommitmentFinalized:
				confirmed = status.Finalized()
			default:
				confirmed = status.Confirmed()
			}

			if confirmed {
				submission.State = StateConfirmed
				return submission, nil
			}
		}

		if time.Now().After(deadline) {
			submission.State = StateExpired
			return submission, errors.Wrapf(ErrExpired, "no confirmation within %s", c.policy.ConfirmationTimeout)
		}

		select {
		case <-ctx.Done():
			// The network may still land the transaction. Callers must not
			// blindly resubmit.
			submission.State = StateExpired
			return submission, errors.Wrap(ErrExpired, "canceled while awaiting confirmation")
		case <-time.After(c.policy.PollInterval):
		}
	}
}
