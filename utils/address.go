package utils

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("invalid ethereum address, it should be 42 characters long (including '0x') and hexadecimal")

var nodeAddressPattern = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// ValidateNodeAddress checks the address against the strict 0x prefixed hex format
func ValidateNodeAddress(address string) error {
	if !nodeAddressPattern.MatchString(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}

// ChecksumAddress returns the EIP-55 mixed case form of a validated address
func ChecksumAddress(address string) string {
	return common.HexToAddress(address).Hex()
}

// ShortAddress returns the abbreviated address as shown in the node overview
func ShortAddress(address string) string {
	if len(address) <= 4 {
		return address
	}
	return address[:4] + "..."
}
