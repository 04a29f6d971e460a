package service

import (
	"strconv"
	"strings"

	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
)

// CodeMessage is what a wallet signs to redeem code.
func CodeMessage(code string) string {
	return "Register with invite code: " + code
}

// NFTMessage is what a wallet signs to register with tokenID.
func NFTMessage(tokenID uint64) string {
	return "Register with NFT token ID: " + strconv.FormatUint(tokenID, 10)
}

// SignatureVerifier checks personal_sign signatures.
type SignatureVerifier struct{}

// Verify reports whether signature over message was produced by claimed.
// Every decode or recovery failure is a plain false.
func (SignatureVerifier) Verify(message, signature, claimed string) bool {
	addr, err := cryptox.RecoverAddress(message, signature)
	if err != nil {
		return false
	}
	return strings.EqualFold(addr.Hex(), strings.TrimSpace(claimed))
}
