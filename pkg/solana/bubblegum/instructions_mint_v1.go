package bubblegum

import (
	"bytes"
	"crypto/ed25519"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
)

var mintV1InstructionDiscriminator = []byte{
	145, 98, 192, 118, 184, 147, 118, 104,
}

type MintV1InstructionArgs struct {
	Message MetadataArgs
}

type MintV1InstructionAccounts struct {
	TreeAuthority ed25519.PublicKey
	LeafOwner     ed25519.PublicKey

	// LeafDelegate defaults to LeafOwner when unset.
	LeafDelegate ed25519.PublicKey

	MerkleTree   ed25519.PublicKey
	Payer        ed25519.PublicKey
	TreeDelegate ed25519.PublicKey
}

// NewMintV1Instruction builds the instruction minting a compressed NFT
// into a merkle tree. The metadata record is validated before encoding.
func NewMintV1Instruction(
	accounts *MintV1InstructionAccounts,
	args *MintV1InstructionArgs,
) (Instruction, error) {
	encoded, err := args.Message.Encode()
	if err != nil {
		return Instruction{}, err
	}
	return NewMintV1InstructionFromEncodedMetadata(accounts, encoded), nil
}

// NewMintV1InstructionFromEncodedMetadata is NewMintV1Instruction for
// callers holding a metadata record already serialized with Encode.
func NewMintV1InstructionFromEncodedMetadata(
	accounts *MintV1InstructionAccounts,
	encodedMetadata []byte,
) Instruction {
	var offset int

	leafDelegate := accounts.LeafDelegate
	if len(leafDelegate) == 0 {
		leafDelegate = accounts.LeafOwner
	}

	// Serialize instruction arguments
	data := make([]byte,
		len(mintV1InstructionDiscriminator)+
			len(encodedMetadata))

	putDiscriminator(data, mintV1InstructionDiscriminator, &offset)
	copy(data[offset:], encodedMetadata)

	return Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []AccountMeta{
			{
				PublicKey:  accounts.TreeAuthority,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.LeafOwner,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  leafDelegate,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MerkleTree,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.TreeDelegate,
				IsWritable: false,
				IsSigner:   true,
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
		},
	}
}

func MintV1InstructionFromLegacyInstruction(txn solana.Transaction, idx int) (*MintV1InstructionArgs, *MintV1InstructionAccounts, error) {
	var offset int
	var discriminator []byte

	instruction := txn.Message.Instructions[idx]

	programAccount := txn.Message.Accounts[instruction.ProgramIndex]
	if !bytes.Equal(PROGRAM_ADDRESS, programAccount) {
		return nil, nil, ErrInvalidProgram
	}

	if len(instruction.Data) < len(mintV1InstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(instruction.Data, &discriminator, &offset)

	if !bytes.Equal(discriminator, mintV1InstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	var args MintV1InstructionArgs
	var accounts MintV1InstructionAccounts

	// Instruction Args
	metadata, err := DecodeMetadataArgs(instruction.Data[offset:])
	if err != nil {
		return nil, nil, err
	}
	args.Message = *metadata

	if len(instruction.Accounts) < 9 {
		return nil, nil, ErrInvalidInstructionData
	}

	// Instruction Accounts
	accounts.TreeAuthority = txn.Message.Accounts[instruction.Accounts[0]]
	accounts.LeafOwner = txn.Message.Accounts[instruction.Accounts[1]]
	accounts.LeafDelegate = txn.Message.Accounts[instruction.Accounts[2]]
	accounts.MerkleTree = txn.Message.Accounts[instruction.Accounts[3]]
	accounts.Payer = txn.Message.Accounts[instruction.Accounts[4]]
	accounts.TreeDelegate = txn.Message.Accounts[instruction.Accounts[5]]

	return &args, &accounts, nil
}
