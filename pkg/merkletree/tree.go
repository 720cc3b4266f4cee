package merkletree

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"
)

type Hash []byte
type Leaf []byte

const (
	// MaxLevels matches the deepest concurrent merkle tree the account
	// compression program supports.
	MaxLevels = 30

	hashSize = 32
)

var (
	ErrMerkleTreeFull    = errors.New("merkle tree is full")
	ErrInvalidLevelCount = errors.New("level count is invalid")
	ErrLeafNotFound      = errors.New("leaf not found")
)

// MerkleTree is an in-memory mirror of an on-chain concurrent merkle tree.
// Nodes hash as keccak256(left || right) with position preserved, and empty
// subtrees chain up from a 32-byte zero node, so roots and proofs line up
// with what the account compression program computes for the same inserts.
// Leaves are hashed on insert: feed AddLeaf the serialized leaf schema and
// the leaf node comes out identical to the program's.
//
// It's not terribly performant, but it only needs to track trees this
// process is minting into.
type MerkleTree struct {
	levels         uint8
	nextIndex      uint64
	root           Hash
	leaves         []Hash
	filledSubtrees []Hash
	zeroValues     []Hash
}

func New(levels uint8) (*MerkleTree, error) {
	if levels < 1 {
		return nil, ErrInvalidLevelCount
	}
	if levels > MaxLevels {
		return nil, ErrInvalidLevelCount
	}

	zeroValues := calculateZeroValues(levels)

	filledSubtrees := make([]Hash, levels)
	copy(filledSubtrees, zeroValues)

	return &MerkleTree{
		levels:         levels,
		nextIndex:      0,
		root:           hashLeftRight(zeroValues[levels-1], zeroValues[levels-1]),
		filledSubtrees: filledSubtrees,
		zeroValues:     zeroValues,
	}, nil
}

func (t *MerkleTree) AddLeaf(leaf Leaf) error {
	if t.nextIndex >= uint64(1)<<t.levels {
		return ErrMerkleTreeFull
	}

	currentIndex := t.nextIndex
	currentLevelHash := hash(leaf)

	t.leaves = append(t.leaves, currentLevelHash)

	var left, right Hash
	for i := 0; i < int(t.levels); i++ {
		if currentIndex%2 == 0 {
			left = currentLevelHash
			right = t.zeroValues[i]
			t.filledSubtrees[i] = currentLevelHash
		} else {
			left = t.filledSubtrees[i]
			right = currentLevelHash
		}

		currentLevelHash = hashLeftRight(left, right)
		currentIndex = currentIndex / 2
	}

	t.root = currentLevelHash
	t.nextIndex++

	return nil
}

func (t *MerkleTree) GetRoot() Hash {
	var cpy Hash
	return append(cpy, t.root...)
}

func (t *MerkleTree) GetLevels() uint8 {
	return t.levels
}

func (t *MerkleTree) GetLeafHash(leaf Leaf) Hash {
	return hash(leaf)
}

func (t *MerkleTree) GetIndexForLeaf(leaf Leaf) (uint64, error) {
	hashed := hash(leaf)
	for i := 0; i < len(t.leaves); i++ {
		if bytes.Equal(hashed, t.leaves[i]) {
			return uint64(i), nil
		}
	}

	return 0, ErrLeafNotFound
}

func (t *MerkleTree) GetLeafCount() uint64 {
	return uint64(len(t.leaves))
}

// GetProofForLeafAtIndex computes the sibling path from the leaf at the
// given index up to the current root. The proof has exactly one element
// per tree level, padding with empty subtree hashes where the tree is
// not yet filled.
func (t *MerkleTree) GetProofForLeafAtIndex(index uint64) ([]Hash, error) {
	if index >= uint64(len(t.leaves)) {
		return nil, ErrLeafNotFound
	}

	layers := make([][]Hash, t.levels)
	currentLayer := t.leaves
	for i := 0; i < int(t.levels); i++ {
		if len(currentLayer)%2 != 0 {
			currentLayer = safeAppendToLayer(currentLayer, t.zeroValues[i])
		}

		layers[i] = currentLayer
		currentLayer = hashPairs(currentLayer)
	}

	proof := make([]Hash, t.levels)
	currentIndex := index

	for i := 0; i < int(t.levels); i++ {
		var sibling Hash
		if currentIndex%2 == 0 {
			sibling = layers[i][currentIndex+1]
		} else {
			sibling = layers[i][currentIndex-1]
		}
		proof[i] = sibling

		currentIndex = currentIndex / 2
	}

	return proof, nil
}

func (t *MerkleTree) String() string {
	var res string
	for i := 0; i < int(t.levels); i++ {
		res += fmt.Sprintf("Level %d: %s\n", i, hex.EncodeToString(t.filledSubtrees[i]))
	}
	res += fmt.Sprintf("Root: %s\n", hex.EncodeToString(t.root))
	return res
}

// Verify walks the proof from the leaf up to the root. The index selects
// whether each proof element sits to the left or the right, mirroring the
// on-chain check.
func Verify(proof []Hash, root Hash, leaf Leaf, index uint64) bool {
	computedHash := hash(leaf)
	for _, proofElement := range proof {
		if index%2 == 0 {
			computedHash = hashLeftRight(computedHash, proofElement)
		} else {
			computedHash = hashLeftRight(proofElement, computedHash)
		}
		index = index / 2
	}
	return bytes.Equal(computedHash, root)
}

func calculateZeroValues(levels uint8) []Hash {
	zeros := make([]Hash, levels)

	current := make(Hash, hashSize)
	for i := 0; i < int(levels); i++ {
		zeros[i] = current
		current = hashLeftRight(current, current)
	}
	return zeros
}

func hashLeftRight(left, right Hash) Hash {
	return hash(safeCombineHashes(left, right))
}

func hash(value []byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(value)
	return hasher.Sum(nil)
}

func hashPairs(layer []Hash) []Hash {
	var res []Hash
	for i := 0; i < len(layer); i += 2 {
		left := layer[i]
		right := layer[i+1]
		hashed := hashLeftRight(left, right)
		res = append(res, hashed)
	}
	return res
}

func safeCombineHashes(hashes ...Hash) []byte {
	var res []byte
	for _, hash := range hashes {
		res = append(res, hash...)
	}
	return res
}

func safeAppendToLayer(slice []Hash, hashes ...Hash) []Hash {
	var res []Hash
	res = append(res, slice...)
	res = append(res, hashes...)
	return res
}

func (h Hash) String() string {
	return hex.EncodeToString(h)
}
