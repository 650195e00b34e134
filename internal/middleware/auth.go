package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
)

type usernameKey struct{}

// GetUsername returns the authenticated username, or "" before RequireAuth ran.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey{}).(string)
	return username
}

// WithUsername returns a context carrying username and reports it to an
// enclosing LoggingInterceptor.
func WithUsername(ctx context.Context, username string) context.Context {
	if info, ok := ctx.Value(callInfoKey{}).(*callInfo); ok {
		info.username = username
	}
	return context.WithValue(ctx, usernameKey{}, username)
}

// TokenVerifier resolves a bearer token to the username it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>"
// header and stores the token's username in the request context.
func RequireAuth(verifier TokenVerifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			header := req.Header().Get("Authorization")
			if header == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			username, err := verifier.Verify(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			return next(WithUsername(ctx, username), req)
		}
	}
}
