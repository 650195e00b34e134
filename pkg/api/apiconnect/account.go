// Package apiconnect holds the Connect handlers and clients for the
// splitledger RPC services.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// AccountServiceName is the fully-qualified name of the AccountService service.
const AccountServiceName = "splitledger.v1.AccountService"

const (
	AccountServiceRegisterProcedure = "/splitledger.v1.AccountService/Register"
	AccountServiceLoginProcedure    = "/splitledger.v1.AccountService/Login"
)

// AccountServiceClient is a client for the splitledger.v1.AccountService service.
type AccountServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
}

// NewAccountServiceClient constructs a client for the splitledger.v1.AccountService service.
func NewAccountServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AccountServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &accountServiceClient{
		register: connect.NewClient[api.RegisterRequest, api.AuthResponse](
			httpClient, baseURL+AccountServiceRegisterProcedure, opts...,
		),
		login: connect.NewClient[api.LoginRequest, api.AuthResponse](
			httpClient, baseURL+AccountServiceLoginProcedure, opts...,
		),
	}
}

type accountServiceClient struct {
	register *connect.Client[api.RegisterRequest, api.AuthResponse]
	login    *connect.Client[api.LoginRequest, api.AuthResponse]
}

func (c *accountServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *accountServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// AccountServiceHandler is an implementation of the splitledger.v1.AccountService service.
type AccountServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
}

// NewAccountServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAccountServiceHandler(svc AccountServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	register := connect.NewUnaryHandler(AccountServiceRegisterProcedure, svc.Register, opts...)
	login := connect.NewUnaryHandler(AccountServiceLoginProcedure, svc.Login, opts...)

	return "/" + AccountServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AccountServiceRegisterProcedure:
			register.ServeHTTP(w, r)
		case AccountServiceLoginProcedure:
			login.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
