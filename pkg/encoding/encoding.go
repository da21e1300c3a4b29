// Package encoding renders raw address and hash bytes into the wire form
// the warehouse rows carry. Hex chains use 0x-prefixed lowercase hex; Tron
// uses Base58Check over a 0x41-prefixed 21-byte payload.
package encoding

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

type Encoding int

const (
	Encoding_Hex Encoding = iota
	Encoding_TronBase58
)

const tronVersionByte = 0x41

func Parse(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "", "hex":
		return Encoding_Hex, nil
	case "tron_base58":
		return Encoding_TronBase58, nil
	}
	return 0, fmt.Errorf("invalid encoding %q", name)
}

func (e Encoding) String() string {
	if e == Encoding_TronBase58 {
		return "tron_base58"
	}
	return "hex"
}

// RenderAddress renders a 20-byte address body. Empty or absent addresses
// render as the empty string.
func RenderAddress(enc Encoding, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if enc == Encoding_TronBase58 {
		return renderTron(body)
	}
	return "0x" + hex.EncodeToString(body)
}

// RenderHash renders hashes and opaque identifiers. These are always hex,
// regardless of the configured address encoding.
func RenderHash(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return "0x" + hex.EncodeToString(b)
}

func renderTron(body []byte) string {
	payload := make([]byte, 0, 25)
	payload = append(payload, tronVersionByte)
	payload = append(payload, body...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}

// DecodeAddress is the inverse of RenderAddress. For Tron it validates the
// 25-byte payload length, the 0x41 version byte and the 4-byte checksum,
// and returns the full 21-byte versioned payload.
func DecodeAddress(enc Encoding, s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if enc == Encoding_TronBase58 {
		payload := base58.Decode(s)
		if len(payload) != 25 {
			return nil, fmt.Errorf("invalid tron address length %d", len(payload))
		}
		if payload[0] != tronVersionByte {
			return nil, fmt.Errorf("invalid tron version byte 0x%02x", payload[0])
		}
		if !bytes.Equal(checksum(payload[:21]), payload[21:]) {
			return nil, fmt.Errorf("tron address checksum mismatch")
		}
		return payload[:21], nil
	}
	if !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("missing 0x prefix")
	}
	return hex.DecodeString(s[2:])
}

// DecimalString renders an integer as base-10 ASCII. nil renders as "0".
func DecimalString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
