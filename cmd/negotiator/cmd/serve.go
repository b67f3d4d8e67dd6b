package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcooky/go-din"
	"github.com/joho/godotenv"
	"github.com/nexuscore/negotiator/config"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/httpapi"
	"github.com/nexuscore/negotiator/internal/mylog"
	"github.com/nexuscore/negotiator/jsonrpc"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the negotiation API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			// Optional; env vars win over the file either way.
			_ = godotenv.Load()

			c := din.NewContainer(ctx, din.EnvProd)

			conf := din.MustGetT[*config.CoreConfig](c)
			logger := din.MustGet[*slog.Logger](c, mylog.Key)

			restHandler := httpapi.NewHandler(c)
			rpcHandler := jsonrpc.NewHandler(c, jsonrpc.WithWorkflow())

			mux := http.NewServeMux()
			mux.Handle("/rpc", rpcHandler)
			mux.Handle("/", restHandler)

			addr := fmt.Sprintf("%s:%d", conf.Host, conf.Port)
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			go func() {
				<-ctx.Done()
				if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.Error("failed to shutdown server", mylog.Err(err))
				}
			}()

			logger.Info("server started", "addr", addr)
			defer logger.Info("server stopped")

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrapf(err, "server failed")
			}

			return nil
		},
	}

	return cmd
}
