package bubblegum

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
)

var transferInstructionDiscriminator = []byte{
	163, 52, 200, 231, 140, 3, 69, 186,
}

const (
	TransferInstructionArgsSize = (32 + // Root
		32 + // DataHash
		32 + // CreatorHash
		8 + // Nonce
		4) // Index
)

type TransferInstructionArgs struct {
	Root        Hash
	DataHash    Hash
	CreatorHash Hash
	Nonce       uint64
	Index       uint32

	// TreeDepth is not serialized. It is the depth the merkle tree was
	// created with and bounds the expected proof length.
	TreeDepth uint32

	// Proof is the path from the leaf to the root, deepest node first. The
	// elements ride along as readonly accounts rather than instruction data.
	Proof []Hash
}

type TransferInstructionAccounts struct {
	TreeAuthority ed25519.PublicKey
	LeafOwner     ed25519.PublicKey

	// LeafDelegate defaults to LeafOwner when unset. One of LeafOwner or
	// LeafDelegate must sign the transaction.
	LeafDelegate ed25519.PublicKey

	NewLeafOwner ed25519.PublicKey
	MerkleTree   ed25519.PublicKey
}

// NewTransferInstruction builds the instruction reassigning ownership of a
// compressed NFT leaf. The proof shape is checked before any encoding so a
// bad proof never reaches the network.
func NewTransferInstruction(
	accounts *TransferInstructionAccounts,
	args *TransferInstructionArgs,
) (Instruction, error) {
	if len(args.Proof) != int(args.TreeDepth) {
		return Instruction{}, errors.Wrapf(ErrMalformedProof, "%d elements for depth %d", len(args.Proof), args.TreeDepth)
	}
	for _, node := range args.Proof {
		if len(node) != HashSize {
			return Instruction{}, errors.Wrap(ErrMalformedProof, "proof element is not 32 bytes")
		}
	}

	var offset int

	leafDelegate := accounts.LeafDelegate
	if len(leafDelegate) == 0 {
		leafDelegate = accounts.LeafOwner
	}

	// Serialize instruction arguments
	data := make([]byte,
		len(transferInstructionDiscriminator)+
			TransferInstructionArgsSize)

	putDiscriminator(data, transferInstructionDiscriminator, &offset)
	putHash(data, args.Root, &offset)
	putHash(data, args.DataHash, &offset)
	putHash(data, args.CreatorHash, &offset)
	putUint64(data, args.Nonce, &offset)
	putUint32(data, args.Index, &offset)

	metas := []AccountMeta{
		{
			PublicKey:  accounts.TreeAuthority,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.LeafOwner,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  leafDelegate,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.NewLeafOwner,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.MerkleTree,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  SPL_NOOP_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  SPL_ACCOUNT_COMPRESSION_ID,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  SYSTEM_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
	}

	// Proof path as remaining accounts
	for _, node := range args.Proof {
		metas = append(metas, AccountMeta{
			PublicKey:  ed25519.PublicKey(node),
			IsWritable: false,
			IsSigner:   false,
		})
	}

	return Instruction{
		Program:  PROGRAM_ID,
		Data:     data,
		Accounts: metas,
	}, nil
}

func TransferInstructionFromLegacyInstruction(txn solana.Transaction, idx int) (*TransferInstructionArgs, *TransferInstructionAccounts, error) {
	var offset int
	var discriminator []byte

	instruction := txn.Message.Instructions[idx]

	programAccount := txn.Message.Accounts[instruction.ProgramIndex]
	if !bytes.Equal(PROGRAM_ADDRESS, programAccount) {
		return nil, nil, ErrInvalidProgram
	}

	if len(instruction.Data) < len(transferInstructionDiscriminator)+TransferInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(instruction.Data, &discriminator, &offset)

	if !bytes.Equal(discriminator, transferInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	var args TransferInstructionArgs
	var accounts TransferInstructionAccounts

	// Instruction Args
	getHash(instruction.Data, &args.Root, &offset)
	getHash(instruction.Data, &args.DataHash, &offset)
	getHash(instruction.Data, &args.CreatorHash, &offset)
	getUint64(instruction.Data, &args.Nonce, &offset)
	getUint32(instruction.Data, &args.Index, &offset)

	if len(instruction.Accounts) < 8 {
		return nil, nil, ErrInvalidInstructionData
	}

	// Instruction Accounts
	accounts.TreeAuthority = txn.Message.Accounts[instruction.Accounts[0]]
	accounts.LeafOwner = txn.Message.Accounts[instruction.Accounts[1]]
	accounts.LeafDelegate = txn.Message.Accounts[instruction.Accounts[2]]
	accounts.NewLeafOwner = txn.Message.Accounts[instruction.Accounts[3]]
	accounts.MerkleTree = txn.Message.Accounts[instruction.Accounts[4]]

	// Proof path from the remaining accounts
	for _, accountIndex := range instruction.Accounts[8:] {
		args.Proof = append(args.Proof, Hash(txn.Message.Accounts[accountIndex]))
	}
	args.TreeDepth = uint32(len(args.Proof))

	return &args, &accounts, nil
}
