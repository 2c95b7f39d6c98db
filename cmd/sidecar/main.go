package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/jacek-casper/casper-node/binaryport"
	"github.com/jacek-casper/casper-node/rpc"
	"github.com/jacek-casper/casper-node/types"
	"github.com/jacek-casper/casper-node/version"
)

// The binary port client is the production implementation of the handler's
// data-access capability.
var _ rpc.NodeClient = (*binaryport.Client)(nil)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sidecar",
		Short: "JSON-RPC facade over a node's binary port",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a config file (optional)")
	flags.String("node-address", "127.0.0.1:28101", "address of the node's binary port")
	flags.String("rpc-listen-addr", "0.0.0.0:7777", "address to serve JSON-RPC on")
	flags.String("api-version", "2.0.0", "protocol API version reported in responses")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("SIDECAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cobra.OnInitialize(func() {
		if configFile := viper.GetString("config"); configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "reading config file: %v\n", err)
				os.Exit(1)
			}
		}
	})

	return cmd
}

func run(ctx context.Context) error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	apiVersion, err := types.ParseProtocolVersion(viper.GetString("api-version"))
	if err != nil {
		return fmt.Errorf("parsing api version: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := binaryport.NewClient(log, viper.GetString("node-address"))
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	handler := rpc.NewInfoHandler(log, client, apiVersion, version.String())
	server := rpc.NewServer(log, handler, prometheus.DefaultRegisterer)

	httpMux := http.NewServeMux()
	httpMux.Handle("/rpc", server.Handler())
	httpMux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              viper.GetString("rpc-listen-addr"),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("rpc_listen_addr", httpServer.Addr).
		Str("node_address", viper.GetString("node-address")).
		Str("build_version", version.String()).
		Msg("starting sidecar")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("rpc server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var result *multierror.Error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, fmt.Errorf("shutting down rpc server: %w", err))
		}
		if err := client.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing node client: %w", err))
		}
		return result.ErrorOrNil()
	})

	err = group.Wait()
	log.Info().Msg("sidecar stopped")
	return err
}
