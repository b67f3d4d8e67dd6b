package jsonrpc

import (
	"context"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/internal/mylog"
)

type ServerOption = func(c *din.Container, server *rpc.Server)

func NewHandler(c *din.Container, opts ...ServerOption) http.Handler {
	logger := din.MustGet[*mylog.Logger](c, mylog.Key)

	rpcServer := newRPCServer(c, opts...)

	return newRecoveryHandler(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithCancel(r.Context())
			defer cancel()

			rpcServer.ServeHTTP(w, r.WithContext(ctx))
		}),
	)
}
