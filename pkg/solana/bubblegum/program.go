// Package bubblegum provides instruction builders and account/metadata
// codecs for the Metaplex Bubblegum compressed-NFT program.
//
// Reference: https://github.com/metaplex-foundation/mpl-bubblegum
package bubblegum

import (
	"crypto/ed25519"
	"errors"

	"github.com/mr-tron/base58"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")

	// ErrInvalidMetadata indicates a metadata record that violates the
	// protocol's validation rules (share sum, basis points, empty fields).
	ErrInvalidMetadata = errors.New("invalid metadata")

	// ErrUnsupportedTreeParameters indicates a (max depth, max buffer size)
	// pair outside the protocol's supported table.
	ErrUnsupportedTreeParameters = errors.New("unsupported tree parameters")

	// ErrMalformedProof indicates a proof whose element count does not match
	// the tree's declared depth.
	ErrMalformedProof = errors.New("malformed proof")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID          = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_NOOP_PROGRAM_ID        = ed25519.PublicKey(mustBase58Decode("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV"))
	SPL_ACCOUNT_COMPRESSION_ID = ed25519.PublicKey(mustBase58Decode("cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK"))
)

// AccountMeta represents the account information required
// for building transactions.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsWritable bool
	IsSigner   bool
}

// Instruction represents a transaction instruction.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
