package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// Ensure AccountService implements the handler interface
var _ apiconnect.AccountServiceHandler = (*AccountService)(nil)

// Authenticator registers accounts and checks their passwords.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (*models.Account, error)
	Authenticate(ctx context.Context, username, password string) (*models.Account, error)
}

// AccountService implements the AccountService RPC interface.
type AccountService struct {
	authenticator Authenticator
	sessions      *auth.SessionIssuer
	logger        *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(authenticator Authenticator, sessions *auth.SessionIssuer, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		authenticator: authenticator,
		sessions:      sessions,
		logger:        logger,
	}
}

// Register creates a new account and returns a session token.
func (s *AccountService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Register request", "username", req.Msg.Username)

	if req.Msg.Email == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("email is required"))
	}

	account, err := s.authenticator.Register(ctx, req.Msg.Username, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "username", req.Msg.Username, "error", err)
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidUsername):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, errInternal)
	}


	s.logger.Info("Account registered successfully", "username", account.Username)
	return s.startSession(account.Username)
}

// Login authenticates an account and returns a session token.
func (s *AccountService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Login request", "username", req.Msg.Username)

	if req.Msg.Username == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	account, err := s.authenticator.Authenticate(ctx, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "username", req.Msg.Username, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}


	s.logger.Info("Account logged in successfully", "username", account.Username)
	return s.startSession(account.Username)
}

func (s *AccountService) startSession(username string) (*connect.Response[api.AuthResponse], error) {
	session, err := s.sessions.Issue(username)
	if err != nil {
		s.logger.Error("Failed to issue session", "username", username, "error", err)
		return nil, connect.NewError(connect.CodeInternal, errInternal)
	}
	return connect.NewResponse(&api.AuthResponse{
		Username:  session.Username,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}), nil
}
