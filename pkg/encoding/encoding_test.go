package encoding

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Parse(t *testing.T) {
	e, err := Parse("hex")
	assert.Nil(t, err)
	assert.Equal(t, Encoding_Hex, e)

	e, err = Parse("tron_base58")
	assert.Nil(t, err)
	assert.Equal(t, Encoding_TronBase58, e)

	e, err = Parse("")
	assert.Nil(t, err)
	assert.Equal(t, Encoding_Hex, e)

	_, err = Parse("base64")
	assert.NotNil(t, err)
}

func Test_RenderAddress_Hex(t *testing.T) {
	body, _ := hex.DecodeString("c02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	assert.Equal(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", RenderAddress(Encoding_Hex, body))
	assert.Equal(t, "", RenderAddress(Encoding_Hex, nil))
}

func Test_RenderAddress_Tron(t *testing.T) {
	// USDT on Tron: body 41a614f803b6fd780986a42c78ec9c7f77e6ded13c with the
	// version byte; the Base58Check form is the well-known TR7... address.
	body, _ := hex.DecodeString("a614f803b6fd780986a42c78ec9c7f77e6ded13c")
	rendered := RenderAddress(Encoding_TronBase58, body)
	assert.Equal(t, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", rendered)
	assert.Equal(t, "T", rendered[:1])
}

func Test_AddressRoundTrip(t *testing.T) {
	bodies := []string{
		"0000000000000000000000000000000000000001",
		"a614f803b6fd780986a42c78ec9c7f77e6ded13c",
		"ffffffffffffffffffffffffffffffffffffffff",
		"5c69bee701ef814a2b6a3edd4b1652cb9cc5aa6f",
	}
	for _, h := range bodies {
		body, _ := hex.DecodeString(h)

		decoded, err := DecodeAddress(Encoding_Hex, RenderAddress(Encoding_Hex, body))
		assert.Nil(t, err)
		assert.Equal(t, body, decoded)

		decoded, err = DecodeAddress(Encoding_TronBase58, RenderAddress(Encoding_TronBase58, body))
		assert.Nil(t, err)
		assert.Equal(t, append([]byte{0x41}, body...), decoded)
	}
}

func Test_DecodeAddress_TronValidation(t *testing.T) {
	_, err := DecodeAddress(Encoding_TronBase58, "TooShort")
	assert.NotNil(t, err)

	// Flip one character of a valid address so the checksum fails.
	_, err = DecodeAddress(Encoding_TronBase58, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6u")
	assert.NotNil(t, err)
}

func Test_RenderHash_AlwaysHex(t *testing.T) {
	b := []byte{0xab, 0xcd}
	assert.Equal(t, "0xabcd", RenderHash(b))
	assert.Equal(t, "", RenderHash(nil))
}

func Test_DecimalString(t *testing.T) {
	assert.Equal(t, "0", DecimalString(nil))
	assert.Equal(t, "0", DecimalString(big.NewInt(0)))

	v, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457584007913129639935", DecimalString(v))

	assert.Equal(t, "-42", DecimalString(big.NewInt(-42)))
}
