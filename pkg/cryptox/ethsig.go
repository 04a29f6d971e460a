package cryptox

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// SignatureLength is the size of an Ethereum [R || S || V] signature.
const SignatureLength = 65

// ErrInvalidSignature is returned for signatures that cannot be decoded or
// recovered. It never says anything about which address was expected.
var ErrInvalidSignature = errors.New("cryptox: invalid signature")

// TextHash returns the EIP-191 personal_sign digest of msg:
//
//	keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg)
func TextHash(msg string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("\x19Ethereum Signed Message:\n" + strconv.Itoa(len(msg))))
	h.Write([]byte(msg))
	return h.Sum(nil)
}

// RecoverAddress recovers the address that produced sigHex over msg using the
// personal_sign scheme. Wallets emit V as 27/28, go-ethereum as 0/1, so both
// are accepted.
func RecoverAddress(msg, sigHex string) (common.Address, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(sigHex))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(sig))
	}

	// Work on a copy so the caller's bytes are untouched.
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	switch normalized[64] {
	case 0, 1:
	case 27, 28:
		normalized[64] -= 27
	default:
		return common.Address{}, fmt.Errorf("%w: bad recovery id %d", ErrInvalidSignature, sig[64])
	}

	pub, err := crypto.SigToPub(TextHash(msg), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignText signs msg with key the way a wallet's personal_sign does and
// returns the 0x-prefixed hex signature with V in {27, 28}.
func SignText(key *ecdsa.PrivateKey, msg string) (string, error) {
	sig, err := crypto.Sign(TextHash(msg), key)
	if err != nil {
		return "", err
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// IsAddress reports whether s is a 0x-prefixed 20 byte hex address.
func IsAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}
