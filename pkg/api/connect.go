package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}
