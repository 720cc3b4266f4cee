package cnft

import (
	"crypto/ed25519"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
)

// signingScope holds private copies of the keys needed to sign a single
// transaction. The copies are wiped when the scope is destroyed so key
// material does not outlive the operation that needed it.
type signingScope struct {
	keys []ed25519.PrivateKey
}

func newSigningScope(keys ...ed25519.PrivateKey) *signingScope {
	scope := &signingScope{
		keys: make([]ed25519.PrivateKey, 0, len(keys)),
	}
	for _, key := range keys {
		if len(key) == 0 {
			continue
		}

		cpy := make(ed25519.PrivateKey, len(key))
		copy(cpy, key)
		scope.keys = append(scope.keys, cpy)
	}
	return scope
}

func (s *signingScope) sign(txn *solana.Transaction) error {
	if len(s.keys) == 0 {
		return ErrMissingSigner
	}
	return txn.Sign(s.keys...)
}

func (s *signingScope) destroy() {
	for _, key := range s.keys {
		for i := range key {
			key[i] = 0
		}
	}
	s.keys = nil
}
