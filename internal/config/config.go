package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "EVMETL"

// Flag / env var names. Kebab-case on the command line, snake_case in viper.
const (
	Debug          = "debug"
	Chain          = "chain"
	TargetFlag     = "target"
	EncodingParam  = "encoding"
	ChunkSizeParam = "chunk-size"

	EthereumRpcBaseUrl = "ethereum.rpc-url"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"
)

type Network uint

const (
	Network_Ethereum Network = iota
	Network_ArbitrumOne
	Network_ArbitrumNova
	Network_Boba
	Network_Tron
)

func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(name) {
	case "mainnet", "ethereum":
		return Network_Ethereum, nil
	case "arbitrum-one":
		return Network_ArbitrumOne, nil
	case "arbitrum-nova":
		return Network_ArbitrumNova, nil
	case "boba":
		return Network_Boba, nil
	case "tron":
		return Network_Tron, nil
	}
	return 0, fmt.Errorf("unsupported chain %s", name)
}

func GetNetworkAsString(n Network) (string, error) {
	switch n {
	case Network_Ethereum:
		return "ethereum", nil
	case Network_ArbitrumOne:
		return "arbitrum-one", nil
	case Network_ArbitrumNova:
		return "arbitrum-nova", nil
	case Network_Boba:
		return "boba", nil
	case Network_Tron:
		return "tron", nil
	}
	return "", fmt.Errorf("unsupported network %d", n)
}

// Target selects the warehouse the emitted row keys are shaped for.
type Target int

const (
	Target_Columnar   Target = 1 // ClickHouse
	Target_Relational Target = 2 // Postgres
)

func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "clickhouse", "columnar":
		return Target_Columnar, nil
	case "postgres", "relational":
		return Target_Relational, nil
	}
	return 0, fmt.Errorf("unsupported target %s", name)
}

type Config struct {
	Network Network
	Target  Target
	Debug   bool

	EthereumRpcConfig EthereumRpcConfig
	PrometheusConfig  PrometheusConfig

	// Raw emitter parameter string, e.g. "encoding=tron_base58&chunk_size=50".
	EmitterParams string
}

type EthereumRpcConfig struct {
	BaseUrl string
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

// EmitterParams is the parsed, validated form of the per-emitter parameter
// string passed by the host.
type EmitterParams struct {
	Encoding  string
	ChunkSize int
}

// ParseEmitterParams validates a "key=value&key=value" parameter string.
// Unknown keys and invalid values are configuration errors and fail the
// handler immediately.
func ParseEmitterParams(params string) (*EmitterParams, error) {
	out := &EmitterParams{
		Encoding:  "hex",
		ChunkSize: 50,
	}
	if params == "" {
		return out, nil
	}
	for _, pair := range strings.Split(params, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("malformed parameter %q", pair)
		}
		switch key {
		case "encoding":
			if value != "hex" && value != "tron_base58" {
				return nil, fmt.Errorf("invalid encoding %q", value)
			}
			out.Encoding = value
		case "chunk_size":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid chunk_size %q", value)
			}
			out.ChunkSize = n
		default:
			return nil, fmt.Errorf("unknown parameter %q", key)
		}
	}
	return out, nil
}

var kebabRegex = regexp.MustCompile(`[-.]`)

// KebabToSnakeCase converts flag names to the snake_case keys viper uses.
func KebabToSnakeCase(s string) string {
	return kebabRegex.ReplaceAllString(s, "_")
}

func NewConfig() *Config {
	return &Config{
		Network: Network_Ethereum,
		Target:  Target_Columnar,
		Debug:   viper.GetBool(KebabToSnakeCase(Debug)),

		EthereumRpcConfig: EthereumRpcConfig{
			BaseUrl: viper.GetString(KebabToSnakeCase(EthereumRpcBaseUrl)),
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(KebabToSnakeCase(PrometheusEnabled)),
			Port:    viper.GetInt(KebabToSnakeCase(PrometheusPort)),
		},
	}
}

func NewConfigFromViper() (*Config, error) {
	c := NewConfig()

	network, err := ParseNetwork(viper.GetString(KebabToSnakeCase(Chain)))
	if err != nil {
		return nil, err
	}
	c.Network = network

	target, err := ParseTarget(viper.GetString(KebabToSnakeCase(TargetFlag)))
	if err != nil {
		return nil, err
	}
	c.Target = target

	params := make([]string, 0)
	if enc := viper.GetString(KebabToSnakeCase(EncodingParam)); enc != "" {
		params = append(params, fmt.Sprintf("encoding=%s", enc))
	}
	if cs := viper.GetString(KebabToSnakeCase(ChunkSizeParam)); cs != "" {
		params = append(params, fmt.Sprintf("chunk_size=%s", cs))
	}
	c.EmitterParams = strings.Join(params, "&")

	if _, err := ParseEmitterParams(c.EmitterParams); err != nil {
		return nil, err
	}
	return c, nil
}
