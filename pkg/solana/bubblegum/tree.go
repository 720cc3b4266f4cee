package bubblegum

type depthSizePair struct {
	maxDepth      uint32
	maxBufferSize uint32
}

// validDepthSizePairs mirrors the concurrent merkle tree sizes the
// account compression program is compiled with. Any other combination
// is rejected on-chain, so it is rejected here before submission.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/libraries/concurrent-merkle-tree/src/concurrent_merkle_tree.rs
var validDepthSizePairs = map[depthSizePair]struct{}{
	{3, 8}:     {},
	{5, 8}:     {},
	{6, 16}:    {},
	{7, 16}:    {},
	{8, 16}:    {},
	{9, 16}:    {},
	{10, 32}:   {},
	{11, 32}:   {},
	{12, 32}:   {},
	{13, 32}:   {},
	{14, 64}:   {},
	{14, 256}:  {},
	{14, 1024}: {},
	{14, 2048}: {},
	{15, 64}:   {},
	{16, 64}:   {},
	{17, 64}:   {},
	{18, 64}:   {},
	{19, 64}:   {},
	{20, 64}:   {},
	{20, 256}:  {},
	{20, 1024}: {},
	{20, 2048}: {},
	{24, 64}:   {},
	{24, 256}:  {},
	{24, 512}:  {},
	{24, 1024}: {},
	{24, 2048}: {},
	{26, 512}:  {},
	{26, 1024}: {},
	{26, 2048}: {},
	{30, 512}:  {},
	{30, 1024}: {},
	{30, 2048}: {},
}

// IsValidDepthSizePair reports whether the account compression program
// supports a concurrent merkle tree of the given dimensions.
func IsValidDepthSizePair(maxDepth, maxBufferSize uint32) bool {
	_, ok := validDepthSizePairs[depthSizePair{maxDepth, maxBufferSize}]
	return ok
}
