package bubblegum

import "fmt"

const (
	// HashSize is the size, in bytes, of the SHA256 hashes used for roots,
	// leaf data hashes and proof path elements.
	HashSize = 32
)

type Hash []byte

func (h Hash) ToString() string {
	return fmt.Sprintf("%x", []byte(h))
}

func putHash(dst []byte, src []byte, offset *int) {
	copy(dst[*offset:], src)
	*offset += HashSize
}

func getHash(src []byte, dst *Hash, offset *int) {
	*dst = make([]byte, HashSize)
	copy(*dst, src[*offset:])
	*offset += HashSize
}

// TokenProgramVersion selects the token program the compressed NFT would
// decompress into.
type TokenProgramVersion uint8

const (
	TokenProgramVersionOriginal TokenProgramVersion = iota
	TokenProgramVersionToken2022
)

type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)
