package bubblegum

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

// Protocol bounds on metadata fields.
//
// Reference: https://github.com/metaplex-foundation/mpl-bubblegum/blob/main/programs/bubblegum/program/src/utils.rs
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxUriLength    = 200
	MaxCreatorLimit = 5
)

const maxSellerFeeBasisPoints = 10000

// Creator is a royalty recipient. Shares across all creators of a metadata
// record must sum to exactly 100.
type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	Share    uint8
}

type Collection struct {
	Verified bool
	Key      ed25519.PublicKey
}

type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

// MetadataArgs is the full metadata record hashed into a compressed NFT
// leaf. Field order matches the on-chain Borsh schema and must not change.
type MetadataArgs struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *TokenStandard
	Collection           *Collection
	Uses                 *Uses
	TokenProgramVersion  TokenProgramVersion
	Creators             []Creator
}

// Validate enforces the protocol's metadata rules. It runs before any
// encoding or network I/O and its failures are deterministic.
func (m *MetadataArgs) Validate() error {
	if len(m.Name) == 0 || len(m.Name) > MaxNameLength {
		return errors.Wrapf(ErrInvalidMetadata, "name must be 1 to %d bytes", MaxNameLength)
	}
	if len(m.Symbol) == 0 || len(m.Symbol) > MaxSymbolLength {
		return errors.Wrapf(ErrInvalidMetadata, "symbol must be 1 to %d bytes", MaxSymbolLength)
	}
	if len(m.Uri) == 0 || len(m.Uri) > MaxUriLength {
		return errors.Wrapf(ErrInvalidMetadata, "uri must be 1 to %d bytes", MaxUriLength)
	}
	if m.SellerFeeBasisPoints > maxSellerFeeBasisPoints {
		return errors.Wrapf(ErrInvalidMetadata, "seller fee basis points exceeds %d", maxSellerFeeBasisPoints)
	}
	if len(m.Creators) > MaxCreatorLimit {
		return errors.Wrapf(ErrInvalidMetadata, "creator count exceeds %d", MaxCreatorLimit)
	}

	if len(m.Creators) > 0 {
		var shareSum int
		for _, c := range m.Creators {
			if len(c.Address) != ed25519.PublicKeySize {
				return errors.Wrap(ErrInvalidMetadata, "creator address must be 32 bytes")
			}
			shareSum += int(c.Share)
		}
		if shareSum != 100 {
			return errors.Wrapf(ErrInvalidMetadata, "creator shares sum to %d, not 100", shareSum)
		}
	}

	return nil
}

func (m *MetadataArgs) encodedSize() int {
	size := (4 + len(m.Name) +
		4 + len(m.Symbol) +
		4 + len(m.Uri) +
		2 + // seller fee basis points
		1 + // primary sale happened
		1 + // is mutable
		1 + // edition nonce option tag
		1 + // token standard option tag
		1 + // collection option tag
		1 + // uses option tag
		1 + // token program version
		4) // creator count

	if m.EditionNonce != nil {
		size += 1
	}
	if m.TokenStandard != nil {
		size += 1
	}
	if m.Collection != nil {
		size += 1 + ed25519.PublicKeySize
	}
	if m.Uses != nil {
		size += 1 + 8 + 8
	}
	size += len(m.Creators) * (ed25519.PublicKeySize + 1 + 1)

	return size
}

// Encode produces the canonical Borsh encoding of the metadata record.
// Validation occurs before any bytes are produced.
func (m *MetadataArgs) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var offset int
	data := make([]byte, m.encodedSize())

	putString(data, m.Name, &offset)
	putString(data, m.Symbol, &offset)
	putString(data, m.Uri, &offset)
	putUint16(data, m.SellerFeeBasisPoints, &offset)
	putBool(data, m.PrimarySaleHappened, &offset)
	putBool(data, m.IsMutable, &offset)
	putOptionalUint8(data, m.EditionNonce, &offset)
	if m.TokenStandard != nil {
		putUint8(data, 1, &offset)
		putUint8(data, uint8(*m.TokenStandard), &offset)
	} else {
		putUint8(data, 0, &offset)
	}
	if m.Collection != nil {
		putUint8(data, 1, &offset)
		putBool(data, m.Collection.Verified, &offset)
		putKey(data, m.Collection.Key, &offset)
	} else {
		putUint8(data, 0, &offset)
	}
	if m.Uses != nil {
		putUint8(data, 1, &offset)
		putUint8(data, uint8(m.Uses.UseMethod), &offset)
		putUint64(data, m.Uses.Remaining, &offset)
		putUint64(data, m.Uses.Total, &offset)
	} else {
		putUint8(data, 0, &offset)
	}
	putUint8(data, uint8(m.TokenProgramVersion), &offset)
	putUint32(data, uint32(len(m.Creators)), &offset)
	for _, c := range m.Creators {
		putKey(data, c.Address, &offset)
		putBool(data, c.Verified, &offset)
		putUint8(data, c.Share, &offset)
	}

	return data, nil
}

// DecodeMetadataArgs is the exact inverse of Encode. Trailing bytes are
// rejected so a record has exactly one valid encoding.
func DecodeMetadataArgs(data []byte) (*MetadataArgs, error) {
	var m MetadataArgs
	var offset int

	if err := getMetadataString(data, &m.Name, &offset); err != nil {
		return nil, errors.Wrap(err, "failed to read name")
	}
	if err := getMetadataString(data, &m.Symbol, &offset); err != nil {
		return nil, errors.Wrap(err, "failed to read symbol")
	}
	if err := getMetadataString(data, &m.Uri, &offset); err != nil {
		return nil, errors.Wrap(err, "failed to read uri")
	}

	if err := requireLen(data, offset, 2+1+1); err != nil {
		return nil, err
	}
	getUint16(data, &m.SellerFeeBasisPoints, &offset)
	getBool(data, &m.PrimarySaleHappened, &offset)
	getBool(data, &m.IsMutable, &offset)

	tag, err := getOptionTag(data, &offset)
	if err != nil {
		return nil, err
	}
	if tag {
		if err := requireLen(data, offset, 1); err != nil {
			return nil, err
		}
		var v uint8
		getUint8(data, &v, &offset)
		m.EditionNonce = &v
	}

	tag, err = getOptionTag(data, &offset)
	if err != nil {
		return nil, err
	}
	if tag {
		if err := requireLen(data, offset, 1); err != nil {
			return nil, err
		}
		var v uint8
		getUint8(data, &v, &offset)
		standard := TokenStandard(v)
		m.TokenStandard = &standard
	}

	tag, err = getOptionTag(data, &offset)
	if err != nil {
		return nil, err
	}
	if tag {
		if err := requireLen(data, offset, 1+ed25519.PublicKeySize); err != nil {
			return nil, err
		}
		var c Collection
		getBool(data, &c.Verified, &offset)
		getKey(data, &c.Key, &offset)
		m.Collection = &c
	}

	tag, err = getOptionTag(data, &offset)
	if err != nil {
		return nil, err
	}
	if tag {
		if err := requireLen(data, offset, 1+8+8); err != nil {
			return nil, err
		}
		var u Uses
		var method uint8
		getUint8(data, &method, &offset)
		u.UseMethod = UseMethod(method)
		getUint64(data, &u.Remaining, &offset)
		getUint64(data, &u.Total, &offset)
		m.Uses = &u
	}

	if err := requireLen(data, offset, 1+4); err != nil {
		return nil, err
	}
	var version uint8
	getUint8(data, &version, &offset)
	m.TokenProgramVersion = TokenProgramVersion(version)

	var creatorCount uint32
	getUint32(data, &creatorCount, &offset)
	if creatorCount > MaxCreatorLimit {
		return nil, errors.Wrapf(ErrInvalidMetadata, "creator count exceeds %d", MaxCreatorLimit)
	}
	for i := uint32(0); i < creatorCount; i++ {
		if err := requireLen(data, offset, ed25519.PublicKeySize+1+1); err != nil {
			return nil, err
		}
		var c Creator
		getKey(data, &c.Address, &offset)
		getBool(data, &c.Verified, &offset)
		getUint8(data, &c.Share, &offset)
		m.Creators = append(m.Creators, c)
	}

	if offset != len(data) {
		return nil, errors.Wrap(ErrInvalidInstructionData, "trailing bytes after metadata")
	}

	return &m, nil
}

func getMetadataString(src []byte, dst *string, offset *int) error {
	if err := requireLen(src, *offset, 4); err != nil {
		return err
	}
	var length uint32
	getUint32(src, &length, offset)
	if err := requireLen(src, *offset, int(length)); err != nil {
		return err
	}
	*dst = string(src[*offset : *offset+int(length)])
	*offset += int(length)
	return nil
}

func getOptionTag(src []byte, offset *int) (bool, error) {
	if err := requireLen(src, *offset, 1); err != nil {
		return false, err
	}
	var tag uint8
	getUint8(src, &tag, offset)
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(ErrInvalidInstructionData, "invalid option tag: %d", tag)
	}
}

func requireLen(src []byte, offset, n int) error {
	if len(src)-offset < n {
		return errors.Wrap(ErrInvalidInstructionData, "metadata truncated")
	}
	return nil
}
