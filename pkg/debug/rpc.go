package debug

import (
	"context"
	"encoding/json"

	"github.com/sourcegraph/jsonrpc2"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// NavigateParams are the parameters of the navigate method.
type NavigateParams struct {
	URL string `json:"url"`
}

func (s *server) handler() jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"state":    s.rpcState,
		"stats":    s.rpcStats,
		"navigate": s.rpcNavigate,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) rpcState(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error) {
	data, err := s.target.StateJSON()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (s *server) rpcStats(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error) {
	return s.target.Stats(), nil
}

func (s *server) rpcNavigate(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params NavigateParams
	if json.Unmarshal(rawParams, &params) != nil || params.URL == "" {
		return nil, errInvalidParams
	}
	s.target.Navigate(params.URL)
	return nil, nil
}
