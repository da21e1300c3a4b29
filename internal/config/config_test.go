package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseEmitterParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := ParseEmitterParams("")
		assert.Nil(t, err)
		assert.Equal(t, "hex", p.Encoding)
		assert.Equal(t, 50, p.ChunkSize)
	})
	t.Run("tron encoding with chunk size", func(t *testing.T) {
		p, err := ParseEmitterParams("encoding=tron_base58&chunk_size=25")
		assert.Nil(t, err)
		assert.Equal(t, "tron_base58", p.Encoding)
		assert.Equal(t, 25, p.ChunkSize)
	})
	t.Run("invalid encoding", func(t *testing.T) {
		_, err := ParseEmitterParams("encoding=base64")
		assert.NotNil(t, err)
	})
	t.Run("invalid chunk size", func(t *testing.T) {
		_, err := ParseEmitterParams("chunk_size=0")
		assert.NotNil(t, err)

		_, err = ParseEmitterParams("chunk_size=abc")
		assert.NotNil(t, err)
	})
	t.Run("unknown key rejected", func(t *testing.T) {
		_, err := ParseEmitterParams("compression=zstd")
		assert.NotNil(t, err)
	})
}

func Test_ParseNetwork(t *testing.T) {
	n, err := ParseNetwork("mainnet")
	assert.Nil(t, err)
	assert.Equal(t, Network_Ethereum, n)

	n, err = ParseNetwork("tron")
	assert.Nil(t, err)
	assert.Equal(t, Network_Tron, n)

	_, err = ParseNetwork("dogecoin")
	assert.NotNil(t, err)
}

func Test_KebabToSnakeCase(t *testing.T) {
	assert.Equal(t, "ethereum_rpc_url", KebabToSnakeCase("ethereum.rpc-url"))
	assert.Equal(t, "chunk_size", KebabToSnakeCase("chunk-size"))
}
