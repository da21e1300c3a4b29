package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tracelake/evmetl/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "evmetl",
	Short: "evmetl decodes EVM block traces into warehouse-shaped rows",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().StringP(config.Chain, "c", "mainnet", "The chain to decode for (mainnet, arbitrum-one, arbitrum-nova, boba, tron)")
	rootCmd.PersistentFlags().String(config.TargetFlag, "clickhouse", "Warehouse row-key shape (clickhouse, postgres)")
	rootCmd.PersistentFlags().String(config.EncodingParam, "hex", "Address rendering (hex, tron_base58)")
	rootCmd.PersistentFlags().String(config.ChunkSizeParam, "50", "Max RPC batch width for balance enrichment")

	rootCmd.PersistentFlags().String(config.EthereumRpcBaseUrl, "", `e.g. "http://<hostname>:8545"; empty disables RPC enrichment`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runVersionCmd)

	runCmd.PersistentFlags().Bool(runOhlcv, false, "Emit per-pool OHLCV candle rows")

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}
