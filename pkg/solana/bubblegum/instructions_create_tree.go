package bubblegum

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
)

var createTreeInstructionDiscriminator = []byte{
	165, 83, 136, 142, 89, 202, 47, 220,
}

const (
	createTreeInstructionMinArgsSize = (4 + // MaxDepth
		4 + // MaxBufferSize
		1) // Public option tag
)

type CreateTreeInstructionArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32

	// Public controls whether anyone may mint into the tree. When nil the
	// program applies its default (only the tree creator and delegate).
	Public *bool
}

type CreateTreeInstructionAccounts struct {
	TreeAuthority ed25519.PublicKey
	MerkleTree    ed25519.PublicKey
	Payer         ed25519.PublicKey
	TreeCreator   ed25519.PublicKey
}

// NewCreateTreeInstruction builds the instruction initializing a tree
// config for a freshly allocated merkle tree account. The depth and buffer
// size must be one of the combinations the account compression program
// supports.
func NewCreateTreeInstruction(
	accounts *CreateTreeInstructionAccounts,
	args *CreateTreeInstructionArgs,
) (Instruction, error) {
	if !IsValidDepthSizePair(args.MaxDepth, args.MaxBufferSize) {
		return Instruction{}, errors.Wrapf(ErrUnsupportedTreeParameters, "depth %d with buffer %d", args.MaxDepth, args.MaxBufferSize)
	}

	var offset int

	argsSize := createTreeInstructionMinArgsSize
	if args.Public != nil {
		argsSize += 1
	}

	// Serialize instruction arguments
	data := make([]byte,
		len(createTreeInstructionDiscriminator)+
			argsSize)

	putDiscriminator(data, createTreeInstructionDiscriminator, &offset)
	putUint32(data, args.MaxDepth, &offset)
	putUint32(data, args.MaxBufferSize, &offset)
	putOptionalBool(data, args.Public, &offset)

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
				PublicKey:  accounts.MerkleTree,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.TreeCreator,
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
	}, nil
}

func CreateTreeInstructionFromLegacyInstruction(txn solana.Transaction, idx int) (*CreateTreeInstructionArgs, *CreateTreeInstructionAccounts, error) {
	var offset int
	var discriminator []byte

	instruction := txn.Message.Instructions[idx]

	programAccount := txn.Message.Accounts[instruction.ProgramIndex]
	if !bytes.Equal(PROGRAM_ADDRESS, programAccount) {
		return nil, nil, ErrInvalidProgram
	}

	if len(instruction.Data) < len(createTreeInstructionDiscriminator)+createTreeInstructionMinArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	getDiscriminator(instruction.Data, &discriminator, &offset)

	if !bytes.Equal(discriminator, createTreeInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	var args CreateTreeInstructionArgs
	var accounts CreateTreeInstructionAccounts

	// Instruction Args
	getUint32(instruction.Data, &args.MaxDepth, &offset)
	getUint32(instruction.Data, &args.MaxBufferSize, &offset)

	public, err := getOptionTag(instruction.Data, &offset)
	if err != nil {
		return nil, nil, err
	}
	if public {
		if len(instruction.Data) < offset+1 {
			return nil, nil, ErrInvalidInstructionData
		}
		var v bool
		getBool(instruction.Data, &v, &offset)
		args.Public = &v
	}

	if len(instruction.Accounts) < 7 {
		return nil, nil, ErrInvalidInstructionData
	}

	// Instruction Accounts
	accounts.TreeAuthority = txn.Message.Accounts[instruction.Accounts[0]]
	accounts.MerkleTree = txn.Message.Accounts[instruction.Accounts[1]]
	accounts.Payer = txn.Message.Accounts[instruction.Accounts[2]]
	accounts.TreeCreator = txn.Message.Accounts[instruction.Accounts[3]]

	return &args, &accounts, nil
}
