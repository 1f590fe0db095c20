package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/elysium-stays/bookingledger/internal/domain"
)

const wordSize = 32

// EncodeUint256 renders an amount as an ABI-style big-endian 32-byte word,
// the wire format the submission interface expects.
func EncodeUint256(v uint64) []byte {
	word := make([]byte, wordSize)
	binary.BigEndian.PutUint64(word[wordSize-8:], v)
	return word
}

// DecodeUint256 parses a 32-byte word back into an amount. Values beyond
// uint64 range are rejected rather than truncated.
func DecodeUint256(word []byte) (uint64, error) {
	if len(word) != wordSize {
		return 0, fmt.Errorf("%w: encoded amount must be %d bytes, got %d", domain.ErrInvalidArgument, wordSize, len(word))
	}
	for _, b := range word[:wordSize-8] {
		if b != 0 {
			return 0, fmt.Errorf("%w: encoded amount overflows uint64", domain.ErrInvalidArgument)
		}
	}
	return binary.BigEndian.Uint64(word[wordSize-8:]), nil
}
