package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// newTestServer serves a handler that echoes the authenticated username.
func newTestServer(t *testing.T, interceptors ...connect.Interceptor) *httptest.Server {
	t.Helper()
	handler := connect.NewUnaryHandler("/test.v1.Test/WhoAmI",
		func(ctx context.Context, req *connect.Request[struct{}]) (*connect.Response[string], error) {
			name := GetUsername(ctx)
			return connect.NewResponse(&name), nil
		},
		connect.WithInterceptors(interceptors...),
		apiconnect.WithJSON(),
	)
	mux := http.NewServeMux()
	mux.Handle("/test.v1.Test/WhoAmI", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, token string) (string, error) {
	t.Helper()
	client := connect.NewClient[struct{}, string](server.Client(), server.URL+"/test.v1.Test/WhoAmI",
		apiconnect.WithJSON())
	req := connect.NewRequest(&struct{}{})
	if token != "" {
		req.Header().Set("Authorization", token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return "", err
	}
	return *resp.Msg, nil
}

func TestRequireAuth(t *testing.T) {
	sessions := auth.NewSessionIssuer("secret", time.Hour)
	server := newTestServer(t, LoggingInterceptor(nil), RequireAuth(sessions))

	session, err := sessions.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	token := session.Token

	t.Run("valid token", func(t *testing.T) {
		got, err := call(t, server, "Bearer "+token)
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if got != "alice" {
			t.Errorf("Expected alice, got %q", got)
		}
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + token},
		{"bad token", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, server, tt.header)
			if connect.CodeOf(err) != connect.CodeUnauthenticated {
				t.Errorf("Expected CodeUnauthenticated, got %v", err)
			}
		})
	}
}

func TestLoggingInterceptor_ReportsCaller(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	sessions := auth.NewSessionIssuer("secret", time.Hour)
	server := newTestServer(t, LoggingInterceptor(logger), RequireAuth(sessions))

	session, err := sessions.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := call(t, server, "Bearer "+session.Token); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if _, err := call(t, server, ""); err == nil {
		t.Fatal("Expected unauthenticated call to fail")
	}

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %s", len(lines), logs.String())
	}
	if !strings.Contains(lines[0], `"msg":"RPC ok"`) || !strings.Contains(lines[0], `"username":"alice"`) {
		t.Errorf("Unexpected success line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"WARN"`) || !strings.Contains(lines[1], `"code":"unauthenticated"`) {
		t.Errorf("Unexpected failure line: %s", lines[1])
	}
}
