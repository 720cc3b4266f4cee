package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"hash"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

// Swappable for tests that need to force an on-curve hash result.
var programHashCtor func() hash.Hash = sha256.New

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrInvalidPublicKey indicates the seeds hashed to a point on the
	// ed25519 curve, which would make the derived address signable.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrDerivationExhausted indicates no off-curve address exists within
	// the bump search space for the provided seeds.
	ErrDerivationExhausted = errors.New("derivation exhausted")
)

// CreateProgramAddress derives an address from the provided seeds and owning
// program. Derived addresses must not lie on the ed25519 curve, ensuring no
// private key exists for them. If the inputs produce a valid curve point,
// ErrInvalidPublicKey is returned and the caller should try another bump.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := programHashCtor()
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}

		if _, err := h.Write(s); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	for _, v := range [][]byte{program, []byte("ProgramDerivedAddress")} {
		if _, err := h.Write(v); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	var pub [32]byte
	copy(pub[:], h.Sum(nil))

	// The address is rejected if it decompresses to a valid EdwardsPoint.
	// The x/crypto library keeps its group element internal, so the check
	// relies on an open source alternative, mirroring ed25519.Verify().
	var A edwards25519.ExtendedGroupElement
	if A.FromBytes(&pub) {
		return nil, ErrInvalidPublicKey
	}

	return pub[:], nil
}

// FindProgramAddressAndBump searches the bump space (255 down to 0) for the
// first off-curve address derivable from the seeds, returning the address and
// the bump that produced it. The search is deterministic: identical inputs
// always yield the identical address and bump.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	bumpSeed := []byte{math.MaxUint8}
	for i := 0; i < math.MaxUint8; i++ {
		pub, err := CreateProgramAddress(program, append(seeds, bumpSeed)...)
		if err == nil {
			return pub, bumpSeed[0], nil
		}
		if err != ErrInvalidPublicKey {
			return nil, 0, err
		}

		bumpSeed[0]--
	}

	return nil, 0, ErrDerivationExhausted
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}
