package options

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
)

func mac(token, optionsString, path string) []byte {
	h := hmac.New(sha1.New, []byte(token))
	h.Write([]byte(optionsString + "/" + path))
	return h.Sum(nil)
}

// Signature returns the hex encoded HMAC-SHA1 of "<options>/<path>" keyed by
// token.
func Signature(token, optionsString, path string) string {
	return hex.EncodeToString(mac(token, optionsString, path))
}

// Sign returns a fragment for optionsString and path that carries its
// signature as the last option set.
func Sign(token, optionsString, path string) string {
	set := signatureKey + kvSeparator + Signature(token, optionsString, path)
	if optionsString == "" {
		return set + "/" + path
	}
	return optionsString + setSeparator + set + "/" + path
}

func verify(token, optionsString, path, signature string) error {
	if signature == "" {
		return SignatureMissingError{}
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return SignatureMismatchError{}
	}
	if !hmac.Equal(got, mac(token, optionsString, path)) {
		return SignatureMismatchError{}
	}
	return nil
}
