package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/tracelake/evmetl/internal/config"
	"github.com/tracelake/evmetl/internal/logger"
	"github.com/tracelake/evmetl/internal/metrics"
	"github.com/tracelake/evmetl/internal/version"
	"github.com/tracelake/evmetl/pkg/chaindata"
	"github.com/tracelake/evmetl/pkg/emitters"
	"github.com/tracelake/evmetl/pkg/encoding"
	"github.com/tracelake/evmetl/pkg/pipeline"
	"github.com/tracelake/evmetl/pkg/pooltracker"
	"github.com/tracelake/evmetl/pkg/rpcbatch"
)

const runOhlcv = "emit-ohlcv"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Decode blocks from stdin and write database changes to stdout",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.NewConfigFromViper()
		if err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}

		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
		if err != nil {
			log.Fatalf("failed to build logger: %v", err)
		}
		defer l.Sync() //nolint:errcheck

		l.Sugar().Infow("evmetl run",
			zap.String("version", version.GetVersion()),
			zap.String("commit", version.GetCommit()),
		)

		params, err := config.ParseEmitterParams(cfg.EmitterParams)
		if err != nil {
			l.Sugar().Fatalw("Invalid emitter parameters", zap.Error(err))
		}
		enc, err := encoding.Parse(params.Encoding)
		if err != nil {
			l.Sugar().Fatalw("Invalid encoding", zap.Error(err))
		}

		registry := prometheus.NewRegistry()
		mc := metrics.NewMetricsClient(registry, l)
		if cfg.PrometheusConfig.Enabled {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
				addr := fmt.Sprintf(":%d", cfg.PrometheusConfig.Port)
				if err := http.ListenAndServe(addr, mux); err != nil {
					l.Sugar().Errorw("Prometheus server stopped", zap.Error(err))
				}
			}()
		}

		p := &pipeline.Pipeline{
			Logger:      l,
			Metrics:     mc,
			Emitter:     emitters.NewEmitter(cfg.Target, enc, l),
			Store:       pooltracker.NewMemoryStore(),
			ChunkSize:   params.ChunkSize,
			EnableOhlcv: viper.GetBool(config.KebabToSnakeCase(runOhlcv)),
		}
		if cfg.EthereumRpcConfig.BaseUrl != "" {
			client, err := gethrpc.Dial(cfg.EthereumRpcConfig.BaseUrl)
			if err != nil {
				l.Sugar().Fatalw("Failed to dial Ethereum RPC", zap.Error(err))
			}
			caller := rpcbatch.NewCaller(client, l, mc)
			p.TokenReader = caller
			p.NativeReader = caller
		}

		if err := processStream(context.Background(), p, l); err != nil {
			l.Sugar().Fatalw("Stream processing failed", zap.Error(err))
		}
	},
}

func init() {
	runCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

// processStream reads one JSON block per line and writes one JSON
// DatabaseChanges per processed block.
func processStream(ctx context.Context, p *pipeline.Pipeline, l *zap.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 256*1024*1024)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush() //nolint:errcheck

	enc := json.NewEncoder(out)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		block := &chaindata.Block{}
		if err := json.Unmarshal(line, block); err != nil {
			return err
		}
		changes, err := p.ProcessBlock(ctx, block)
		if err != nil {
			return err
		}
		if err := enc.Encode(changes); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}
