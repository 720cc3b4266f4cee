// Package cnft is the operation boundary for the compressed-NFT lifecycle:
// create a tree config, mint, transfer, and canonical metadata
// serialization. Each operation builds and signs a transaction from the
// program bindings and drives it to a terminal submission state.
package cnft

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"

	"github.com/sirupsen/logrus"

	"github.com/cnft-labs/bubblegum-go/pkg/solana"
	"github.com/cnft-labs/bubblegum-go/pkg/solana/bubblegum"
)

// SolanaClient is the slice of the RPC surface the operations consume.
// solana.Client satisfies it.
type SolanaClient interface {
	GetLatestBlockhash() (solana.Blockhash, error)
	SubmitTransaction(solana.Transaction, solana.Commitment) (solana.Signature, error)
	GetSignatureStatuses([]solana.Signature) ([]*solana.SignatureStatus, error)
}

type Client struct {
	log    *logrus.Entry
	solana SolanaClient
	policy SubmitPolicy
}

// New returns a client submitting through the specified RPC endpoint with
// the default policy.
func New(endpoint string) *Client {
	return NewWithClient(solana.New(endpoint), DefaultSubmitPolicy())
}

// NewForEnvironment returns a client against one of the public cluster
// endpoints.
func NewForEnvironment(env solana.Environment) *Client {
	return New(string(env))
}

// NewWithClient returns a client using the provided RPC client and policy.
func NewWithClient(solanaClient SolanaClient, policy SubmitPolicy) *Client {
	return &Client{
		log:    logrus.StandardLogger().WithField("type", "cnft/client"),
		solana: solanaClient,
		policy: policy,
	}
}

type CreateTreeConfigArgs struct {
	Payer ed25519.PrivateKey

	// MerkleTree is the keypair of the pre-allocated merkle tree account.
	// It co-signs the transaction.
	MerkleTree ed25519.PrivateKey

	// TreeCreator becomes the tree's authority. Defaults to the payer when
	// unset.
	TreeCreator ed25519.PrivateKey

	MaxDepth      uint32
	MaxBufferSize uint32

	// Public controls whether anyone may mint into the tree. Absent means
	// the program default (creator and delegate only).
	Public *bool
}

// CreateTreeConfig initializes the Bubblegum tree config for a merkle tree
// account and submits the transaction.
func (c *Client) CreateTreeConfig(ctx context.Context, args *CreateTreeConfigArgs) (*Submission, error) {
	treeCreator := args.TreeCreator
	if len(treeCreator) == 0 {
		treeCreator = args.Payer
	}

	merkleTree := publicKeyOf(args.MerkleTree)

	treeAuthority, err := bubblegum.GetTreeAuthorityAddress(&bubblegum.GetTreeAuthorityAddressArgs{
		MerkleTree: merkleTree,
	})
	if err != nil {
		return &Submission{State: StateBuilt}, err
	}

	instruction, err := bubblegum.NewCreateTreeInstruction(
		&bubblegum.CreateTreeInstructionAccounts{
			TreeAuthority: treeAuthority,
			MerkleTree:    merkleTree,
			Payer:         publicKeyOf(args.Payer),
			TreeCreator:   publicKeyOf(treeCreator),
		},
		&bubblegum.CreateTreeInstructionArgs{
			MaxDepth:      args.MaxDepth,
			MaxBufferSize: args.MaxBufferSize,
			Public:        args.Public,
		},
	)
	if err != nil {
		return &Submission{State: StateBuilt}, err
	}

	return c.signAndSubmit(
		ctx,
		publicKeyOf(args.Payer),
		[]solana.Instruction{instruction.ToLegacyInstruction()},
		args.Payer, args.MerkleTree, treeCreator,
	)
}

type MintV1Args struct {
	Payer ed25519.PrivateKey

	// TreeDelegate authorizes minting into the tree. Defaults to the payer
	// when unset.
	TreeDelegate ed25519.PrivateKey

	MerkleTree ed25519.PublicKey
	LeafOwner  ed25519.PublicKey

	// LeafDelegate defaults to LeafOwner when unset.
	LeafDelegate ed25519.PublicKey

	Metadata bubblegum.MetadataArgs
}

// MintV1 mints a compressed NFT into a tree and submits the transaction.
// The metadata record is validated before any I/O.
func (c *Client) MintV1(ctx context.Context, args *MintV1Args) (*Submission, error) {
	treeDelegate := args.TreeDelegate
	if len(treeDelegate) == 0 {
		treeDelegate = args.Payer
	}

	treeAuthority, err := bubblegum.GetTreeAuthorityAddress(&bubblegum.GetTreeAuthorityAddressArgs{
		MerkleTree: args.MerkleTree,
	})
	if err != nil {
		return &Submission{State: StateBuilt}, err
	}

	instruction, err := bubblegum.NewMintV1Instruction(
		&bubblegum.MintV1InstructionAccounts{
			TreeAuthority: treeAuthority,
			LeafOwner:     args.LeafOwner,
			LeafDelegate:  args.LeafDelegate,
			MerkleTree:    args.MerkleTree,
			Payer:         publicKeyOf(args.Payer),
			TreeDelegate:  publicKeyOf(treeDelegate),
		},
		&bubblegum.MintV1InstructionArgs{
			Message: args.Metadata,
		},
	)
	if err != nil {
		return &Submission{State: StateBuilt}, err
	}

	return c.signAndSubmit(
		ctx,
		publicKeyOf(args.Payer),
		[]solana.Instruction{instruction.ToLegacyInstruction()},
		args.Payer, treeDelegate,
	)
}

type TransferArgs struct {
	Payer ed25519.PrivateKey

	// LeafOwner is the current owner and must sign.
	LeafOwner ed25519.PrivateKey

	MerkleTree   ed25519.PublicKey
	NewLeafOwner ed25519.PublicKey

	Root        bubblegum.Hash
	DataHash    bubblegum.Hash
	CreatorHash bubblegum.Hash
	Nonce       uint64
	Index       uint32

	TreeDepth uint32
	Proof     []bubblegum.Hash
}

// Transfer reassigns ownership of a compressed NFT leaf and submits the
// transaction. The proof shape is validated before any I/O.
func (c *Client) Transfer(ctx context.Context, args *TransferArgs) (*Submission, error) {
	treeAuthority, err := bubblegum.GetTreeAuthorityAddress(&bubblegum.GetTreeAuthorityAddressArgs{
		MerkleTree: args.MerkleTree,
	})
	if err != nil {
		return &Submission{State: StateBuilt}, err
	}

	instruction, err := bubblegum.NewTransferInstruction(
		&bubblegum.TransferInstructionAccounts{
			TreeAuthority: treeAuthority,
			LeafOwner:     publicKeyOf(args.LeafOwner),
			NewLeafOwner:  args.NewLeafOwner,
			MerkleTree:    args.MerkleTree,
		},
		&bubblegum.TransferInstructionArgs{
			Root:        args.Root,
			DataHash:    args.DataHash,
			CreatorHash: args.CreatorHash,
			Nonce:       args.Nonce,
			Index:       args.Index,
			TreeDepth:   args.TreeDepth,
			Proof:       args.Proof,
		},
	)
	if err != nil {
		return &Submission{State: StateBuilt}, err
	}

	return c.signAndSubmit(
		ctx,
		publicKeyOf(args.Payer),
		[]solana.Instruction{instruction.ToLegacyInstruction()},
		args.Payer, args.LeafOwner,
	)
}

// SerializeMetadata returns the canonical encoding of a metadata record,
// validating it first. The bytes are exactly what MintV1 places on the
// wire.
func SerializeMetadata(metadata *bubblegum.MetadataArgs) ([]byte, error) {
	return metadata.Encode()
}

// SerializeMetadataToString is SerializeMetadata with base64 wrapping for
// textual transports.
func SerializeMetadataToString(metadata *bubblegum.MetadataArgs) (string, error) {
	raw, err := metadata.Encode()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DeserializeMetadata is the exact inverse of SerializeMetadata.
func DeserializeMetadata(data []byte) (*bubblegum.MetadataArgs, error) {
	return bubblegum.DecodeMetadataArgs(data)
}

func (c *Client) signAndSubmit(
	ctx context.Context,
	payer ed25519.PublicKey,
	instructions []solana.Instruction,
	signers ...ed25519.PrivateKey,
) (*Submission, error) {
	txn := solana.NewTransaction(payer, instructions...)

	blockhash, err := c.solana.GetLatestBlockhash()
	if err != nil {
		return &Submission{State: StateBuilt}, &TransportError{Attempts: 1, Cause: err}
	}
	txn.SetBlockhash(blockhash)

	scope := newSigningScope(signers...)
	defer scope.destroy()

	if err := scope.sign(&txn); err != nil {
		return &Submission{State: StateBuilt}, err
	}

	return c.Submit(ctx, &txn)
}

func publicKeyOf(key ed25519.PrivateKey) ed25519.PublicKey {
	if len(key) != ed25519.PrivateKeySize {
		return nil
	}
	return key.Public().(ed25519.PublicKey)
}
