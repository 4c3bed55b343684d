package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// weiPerEther is 10^18
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidRequest = errors.New("invalid request id")
	ErrInvalidWord    = errors.New("invalid random word")
)

// ParseAddress parses a 0x-prefixed hex address and rejects the zero address
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero address", ErrInvalidAddress)
	}
	return addr, nil
}

// ParseRequestID parses a 0x-prefixed 32-byte hex request id
func ParseRequestID(s string) (common.Hash, error) {
	b, err := hexutil.Decode(strings.TrimSpace(s))
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidRequest, s)
	}
	id := common.BytesToHash(b)
	if id == (common.Hash{}) {
		return common.Hash{}, fmt.Errorf("%w: zero id", ErrInvalidRequest)
	}
	return id, nil
}

// ParseWord parses a uint256 random word given in decimal or 0x hex
func ParseWord(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidWord)
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWord, s)
	}
	return v, nil
}

// ParseWei parses a non-negative base-10 integer amount of wei
func ParseWei(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// ParseEther converts a decimal ether amount such as "0.01" to wei. More
// than 18 fractional digits is an error.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 18 || strings.HasPrefix(whole, "-") || strings.HasPrefix(whole, "+") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	digits := whole + frac + strings.Repeat("0", 18-len(frac))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// FormatWei renders wei as an ether amount with trailing zeros trimmed,
// e.g. 10000000000000000 -> "0.01 ETH"
func FormatWei(wei *big.Int) string {
	if wei == nil {
		return "0 ETH"
	}
	sign := ""
	v := new(big.Int).Set(wei)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	whole, frac := new(big.Int).QuoRem(v, weiPerEther, new(big.Int))
	if frac.Sign() == 0 {
		return fmt.Sprintf("%s%s ETH", sign, whole)
	}
	digits := frac.String()
	fracStr := strings.TrimRight(strings.Repeat("0", 18-len(digits))+digits, "0")
	return fmt.Sprintf("%s%s.%s ETH", sign, whole, fracStr)
}

// MaskAddress keeps the first and last four hex digits of an address for logs
func MaskAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "****" + hex[len(hex)-4:]
}
