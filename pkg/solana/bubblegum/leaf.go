package bubblegum

import (
	"crypto/ed25519"
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

const (
	leafSchemaVersionV1 = 1

	leafSchemaSize = 1 + 3*ed25519.PublicKeySize + 8 + 2*HashSize
)

// LeafSchema is the record the program hashes into a merkle tree node for
// a compressed NFT. Off-chain mirrors need it to reproduce leaf nodes, and
// transfers need the resulting node's proof path.
type LeafSchema struct {
	AssetId     ed25519.PublicKey
	Owner       ed25519.PublicKey
	Delegate    ed25519.PublicKey
	Nonce       uint64
	DataHash    Hash
	CreatorHash Hash
}

// Encode returns the exact byte layout the program feeds to keccak-256
// when turning the schema into a tree node: hashing the encoding yields
// the leaf node.
func (s *LeafSchema) Encode() []byte {
	var offset int
	data := make([]byte, leafSchemaSize)

	putUint8(data, leafSchemaVersionV1, &offset)
	putKey(data, s.AssetId, &offset)
	putKey(data, s.Owner, &offset)
	putKey(data, s.Delegate, &offset)
	putUint64(data, s.Nonce, &offset)
	putHash(data, s.DataHash, &offset)
	putHash(data, s.CreatorHash, &offset)

	return data
}

// HashMetadata returns the data hash committed into a leaf: the keccak-256
// of the encoded metadata, hashed again with the seller fee so royalty
// changes invalidate the leaf. Validation rules apply as in Encode.
func HashMetadata(args *MetadataArgs) (Hash, error) {
	encoded, err := args.Encode()
	if err != nil {
		return nil, err
	}

	metadataHash := keccak(encoded)

	fee := make([]byte, 2)
	binary.LittleEndian.PutUint16(fee, args.SellerFeeBasisPoints)

	return keccak(append(metadataHash, fee...)), nil
}

// HashCreators returns the creator hash committed into a leaf: keccak-256
// over each creator's (address, verified, share) in order.
func HashCreators(creators []Creator) Hash {
	var data []byte
	for _, creator := range creators {
		data = append(data, creator.Address...)
		if creator.Verified {
			data = append(data, 1)
		} else {
			data = append(data, 0)
		}
		data = append(data, creator.Share)
	}
	return keccak(data)
}

func keccak(data []byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return hasher.Sum(nil)
}
