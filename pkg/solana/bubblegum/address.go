package bubblegum

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
)

const (
	collectionCpiSeed = "collection_cpi"
	assetSeed         = "asset"
)

type GetTreeAuthorityAddressArgs struct {
	MerkleTree ed25519.PublicKey
}

// GetTreeAuthorityAddress derives the tree config PDA owned by the
// Bubblegum program for a given merkle tree account.
func GetTreeAuthorityAddress(args *GetTreeAuthorityAddressArgs) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		PROGRAM_ID,
		args.MerkleTree,
	)
}

// GetBubblegumSignerAddress derives the PDA the Bubblegum program signs
// with when making CPI calls into the token metadata program.
func GetBubblegumSignerAddress() (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		PROGRAM_ID,
		[]byte(collectionCpiSeed),
	)
}

type GetAssetIdAddressArgs struct {
	MerkleTree ed25519.PublicKey
	Nonce      uint64
}

// GetAssetIdAddress derives the asset id of the compressed NFT minted into
// a tree at the given nonce. The id is part of the leaf schema hashed into
// the tree.
func GetAssetIdAddress(args *GetAssetIdAddressArgs) (ed25519.PublicKey, error) {
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, args.Nonce)

	return solana.FindProgramAddress(
		PROGRAM_ID,
		[]byte(assetSeed),
		args.MerkleTree,
		nonce,
	)
}
