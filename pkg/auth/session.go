package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudctl/authctl/pkg/certstore"
)

// TokenAcquirer performs the token exchange for a built request. It may block
// on network I/O or user-paced interaction for an unbounded duration; callers
// cancel via the context.
type TokenAcquirer interface {
	Acquire(ctx context.Context, req TokenRequest) (*Token, error)
}

// Session owns the credential state for one caller: the most recently
// acquired token and header. Calls on a Session are serialized by an internal
// mutex; independent sessions are independent.
type Session struct {
	mu       sync.Mutex
	acquirer TokenAcquirer
	headers  HeaderConstructor
	store    certstore.Store
	runtime  RuntimeClass
	logger   *zap.Logger

	token  *Token
	header *AuthenticationHeader
}

// SessionOption configures a Session at construction.
type SessionOption func(*Session)

// WithHeaderConstructor replaces the default bearer header constructor.
func WithHeaderConstructor(hc HeaderConstructor) SessionOption {
	return func(s *Session) { s.headers = hc }
}

// WithCertificateStore supplies the store used to resolve certificate
// thumbprints for certificate-mode requests.
func WithCertificateStore(store certstore.Store) SessionOption {
	return func(s *Session) { s.store = store }
}

// WithRuntimeClass sets the host runtime class used for redirect resolution.
func WithRuntimeClass(rc RuntimeClass) SessionOption {
	return func(s *Session) { s.runtime = rc }
}

// WithLogger attaches a logger; it is named "auth".
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = logger.Named("auth") }
}

// NewSession builds a session around a token acquirer.
func NewSession(acquirer TokenAcquirer, opts ...SessionOption) *Session {
	s := &Session{
		acquirer: acquirer,
		headers:  BearerHeaderConstructor{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AcquireAuthentication runs one acquisition: validate the context, resolve
// the redirect URI, build the typed request, exchange it for a token, and
// construct the header. Failures return a stage-tagged error and are also
// logged as warnings naming the stage.
//
// On acquisition failure the session state is left untouched. On header
// construction failure the token has already been overwritten but the prior
// header is kept, so Header may lag Token until the next full success.
func (s *Session) AcquireAuthentication(ctx context.Context, ac AuthContext) (*AuthenticationHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ac.Validate(); err != nil {
		s.logger.Warn("invalid authentication configuration", zap.Error(err))
		return nil, err
	}

	correlationID := uuid.NewString()
	clientID := ac.EffectiveClientID()
	redirectURI := ResolveRedirectURI(clientID, ac.RedirectURI, s.runtime)
	s.logger.Info("resolved redirect URI",
		zap.String("correlation_id", correlationID),
		zap.String("client_id", clientID),
		zap.String("mode", ac.Mode.String()),
		zap.String("runtime", s.runtime.String()),
		zap.String("redirect_uri", redirectURI))

	req, err := BuildTokenRequest(ac, redirectURI, s.store)
	if err != nil {
		s.logger.Warn("failed to construct token request parameters",
			zap.String("correlation_id", correlationID),
			zap.Error(err))
		return nil, err
	}

	token, err := s.acquirer.Acquire(ctx, req)
	if err != nil {
		var acqErr *AcquisitionError
		if !errors.As(err, &acqErr) {
			acqErr = &AcquisitionError{Err: err}
		}
		s.logger.Warn("token acquisition failed",
			zap.String("correlation_id", correlationID),
			zap.String("mode", ac.Mode.String()),
			zap.Error(acqErr))
		return nil, acqErr
	}
	s.token = token

	header, err := s.headers.Construct(token)
	if err != nil {
		hdrErr := &HeaderError{Err: err}
		s.logger.Warn("header construction failed",
			zap.String("correlation_id", correlationID),
			zap.Error(hdrErr))
		return nil, hdrErr
	}
	s.header = &header
	s.logger.Info("authentication header refreshed",
		zap.String("correlation_id", correlationID),
		zap.Time("expires_at", token.Expiry))
	return &header, nil
}

// Token returns the most recently acquired token, or nil before the first
// successful acquisition.
func (s *Session) Token() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Header returns the most recently constructed header, or nil before the
// first full success. After a header-stage failure it may predate Token.
func (s *Session) Header() *AuthenticationHeader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}
