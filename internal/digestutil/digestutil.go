package digestutil

import (
	"fmt"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// Format encodes a multihash as base58btc multibase, e.g. "zQm...".
func Format(digest multihash.Multihash) string {
	key, _ := multibase.Encode(multibase.Base58BTC, digest)
	return key
}

// Parse decodes a multibase encoded multihash.
func Parse(input string) (multihash.Multihash, error) {
	_, bytes, err := multibase.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("decoding multibase string: %w", err)
	}
	digest, err := multihash.Cast(bytes)
	if err != nil {
		return nil, fmt.Errorf("casting to multihash: %w", err)
	}
	return digest, nil
}
