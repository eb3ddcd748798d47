package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/config"
	"github.com/deppfellow/quiz-api/internal/errs"
	"github.com/deppfellow/quiz-api/internal/lib/oauth"
	"github.com/deppfellow/quiz-api/internal/lib/password"
	"github.com/deppfellow/quiz-api/internal/lib/token"
	"github.com/deppfellow/quiz-api/internal/model/auth"
	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/repository"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

const tokenTypeBearer = "Bearer"

var (
	errInvalidCredentials = errs.NewUnauthorizedError("Invalid email or password", true)
	errInvalidOTP         = errs.NewBadRequestError("Invalid or expired token", true, errs.Code("INVALID_TOKEN"), nil, nil)
)

// ClientInfo identifies where a session was opened from.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type AuthService struct {
	users     userStore
	tokens    tokenStore
	mail      mailQueue
	jwt       *token.Manager
	hasher    *password.Hasher
	providers *oauth.Registry
	states    oauth.StateStore
	cfg       config.AuthConfig
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewAuthService(s *server.Server, repos *repository.Repositories) *AuthService {
	return &AuthService{
		users:     repos.User,
		tokens:    repos.Token,
		mail:      s.Enqueuer,
		jwt:       token.NewManager(s.Config.Auth),
		hasher:    password.NewHasher(s.Config.Auth.BcryptCost),
		providers: oauth.NewRegistry(s.Config.OAuth),
		states:    oauth.NewRedisStateStore(s.Redis, s.Config.OAuth.StateTTL),
		cfg:       s.Config.Auth,
		logger:    s.Logger,
		now:       time.Now,
	}
}

// Register creates an inactive account and mails it a verification code.
func (s *AuthService) Register(ctx context.Context, payload *auth.RegisterRequest) (*user.User, error) {
	_, err := s.users.GetByEmail(ctx, payload.Email)
	if err == nil {
		return nil, errs.NewBadRequestError("A user with this email already exists", true, errs.Code("EMAIL_ALREADY_EXISTS"), nil, nil)
	}
	if !sqlerr.IsNotFound(err) {
		return nil, err
	}

	hash, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return nil, err
	}

	otp, err := password.GenerateOTP()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.cfg.VerificationTTL)

	u, err := s.users.Create(ctx, repository.CreateUserParams{
		Name:                 payload.Name,
		Email:                payload.Email,
		PasswordHash:         hash,
		Status:               user.StatusInactive,
		UserType:             user.TypeUser,
		EmailVerifyToken:     &otp,
		EmailVerifyExpiredAt: &expiresAt,
	})
	if err != nil {
		return nil, err
	}

	enqueueLogged(s.logger, "verification_email", u.Email,
		s.mail.EnqueueVerificationEmail(ctx, u.Email, u.Name, otp, s.cfg.VerificationTTL))

	return u, nil
}

func (s *AuthService) Login(ctx context.Context, payload *auth.LoginRequest, client ClientInfo) (*auth.TokenResponse, error) {
	u, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Compare(u.Password, payload.Password) {
		return nil, errInvalidCredentials
	}

	if err := checkActive(u); err != nil {
		return nil, err
	}

	return s.openSession(ctx, u, client)
}

func checkActive(u *user.User) error {
	if !u.IsActive() {
		return errs.NewForbiddenError("Your account is "+string(u.Status), true)
	}
	return nil
}

// openSession issues a token pair and stores it as a new session.
func (s *AuthService) openSession(ctx context.Context, u *user.User, client ClientInfo) (*auth.TokenResponse, error) {
	pair, err := s.jwt.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Create(ctx, newSession(pair, u.ID, client)); err != nil {
		return nil, err
	}

	return tokenResponse(pair, u), nil
}

func newSession(pair *token.Pair, userID uuid.UUID, client ClientInfo) *auth.Token {
	return &auth.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       userID,
		IP:           optional(client.IP),
		UserAgent:    optional(client.UserAgent),
		ExpiredAt:    pair.AccessExpiresAt,
	}
}

func tokenResponse(pair *token.Pair, u *user.User) *auth.TokenResponse {
	return &auth.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        tokenTypeBearer,
		ExpiresAt:        pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		User:             u,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// tokenError maps a JWT parse failure onto a 401.
func tokenError(err error, kind string) error {
	if errors.Is(err, token.ErrExpiredToken) {
		return errs.NewUnauthorizedError(kind+" has expired", true)
	}
	return errs.NewUnauthorizedError("Invalid "+kind, true)
}

// Refresh trades a refresh token for a new pair. The old pair stops working.
func (s *AuthService) Refresh(ctx context.Context, payload *auth.RefreshRequest, client ClientInfo) (*auth.TokenResponse, error) {
	claims, err := s.jwt.Parse(payload.RefreshToken, token.TypeRefresh)
	if err != nil {
		return nil, tokenError(err, "refresh token")
	}

	session, err := s.tokens.GetByRefreshToken(ctx, payload.RefreshToken)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewUnauthorizedError("Invalid refresh token", true)
		}
		return nil, err
	}
	if session.Revoked() {
		return nil, errs.NewUnauthorizedError("Refresh token has been revoked", true)
	}

	userID, err := claims.UserID()
	if err != nil || userID != session.UserID {
		return nil, errs.NewUnauthorizedError("Invalid refresh token", true)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewUnauthorizedError("Invalid refresh token", true)
		}
		return nil, err
	}
	if err := checkActive(u); err != nil {
		return nil, err
	}

	pair, err := s.jwt.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Rotate(ctx, payload.RefreshToken, newSession(pair, u.ID, client)); err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewUnauthorizedError("Refresh token has been revoked", true)
		}
		return nil, err
	}

	return tokenResponse(pair, u), nil
}

// Logout revokes the session of the given access token.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	return s.tokens.Revoke(ctx, accessToken, s.now())
}

// Authenticate resolves a bearer token to its active user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*user.User, error) {
	claims, err := s.jwt.Parse(accessToken, token.TypeAccess)
	if err != nil {
		return nil, tokenError(err, "token")
	}

	session, err := s.tokens.GetByAccessToken(ctx, accessToken)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewUnauthorizedError("Invalid token", true)
		}
		return nil, err
	}
	if session.Revoked() || session.Expired(s.now()) {
		return nil, errs.NewUnauthorizedError("Token has been revoked", true)
	}

	userID, err := claims.UserID()
	if err != nil || userID != session.UserID {
		return nil, errs.NewUnauthorizedError("Invalid token", true)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewUnauthorizedError("Invalid token", true)
		}
		return nil, err
	}
	if err := checkActive(u); err != nil {
		return nil, err
	}

	return u, nil
}

// checkOTP compares in constant time and rejects expired codes.
func (s *AuthService) checkOTP(stored *string, expiresAt *time.Time, given string) error {
	if stored == nil || expiresAt == nil {
		return errInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(*stored), []byte(given)) != 1 {
		return errInvalidOTP
	}
	if !s.now().Before(*expiresAt) {
		return errInvalidOTP
	}
	return nil
}

// VerifyEmail activates the account and queues the welcome email.
func (s *AuthService) VerifyEmail(ctx context.Context, payload *auth.VerifyEmailRequest) error {
	u, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return errInvalidOTP
		}
		return err
	}

	if u.IsVerified() {
		return errs.NewBadRequestError("Email is already verified", true, errs.Code("EMAIL_ALREADY_VERIFIED"), nil, nil)
	}

	if err := s.checkOTP(u.EmailVerifyToken, u.EmailVerifyExpiredAt, payload.Token); err != nil {
		return err
	}

	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return err
	}

	enqueueLogged(s.logger, "welcome_email", u.Email, s.mail.EnqueueWelcomeEmail(ctx, u.Email, u.Name))
	return nil
}

// ResendVerification issues a fresh code. Unknown and already verified
// addresses succeed silently so the endpoint does not reveal accounts.
func (s *AuthService) ResendVerification(ctx context.Context, payload *auth.EmailRequest) error {
	u, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil
		}
		return err
	}
	if u.IsVerified() {
		return nil
	}

	otp, err := password.GenerateOTP()
	if err != nil {
		return err
	}

	if err := s.users.SetVerificationToken(ctx, u.ID, otp, s.now().Add(s.cfg.VerificationTTL)); err != nil {
		return err
	}

	enqueueLogged(s.logger, "verification_email", u.Email,
		s.mail.EnqueueVerificationEmail(ctx, u.Email, u.Name, otp, s.cfg.VerificationTTL))
	return nil
}

// ForgotPassword mails a reset code if the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, payload *auth.EmailRequest) error {
	u, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil
		}
		return err
	}

	otp, err := password.GenerateOTP()
	if err != nil {
		return err
	}

	if err := s.users.SetPasswordResetToken(ctx, u.ID, otp, s.now().Add(s.cfg.PasswordResetTTL)); err != nil {
		return err
	}

	enqueueLogged(s.logger, "password_reset_email", u.Email,
		s.mail.EnqueuePasswordResetEmail(ctx, u.Email, u.Name, otp, s.cfg.PasswordResetTTL))
	return nil
}

// ResetPassword sets a new password and ends every session of the user.
func (s *AuthService) ResetPassword(ctx context.Context, payload *auth.ResetPasswordRequest) error {
	u, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return errInvalidOTP
		}
		return err
	}

	if err := s.checkOTP(u.PasswordResetToken, u.PasswordResetExpiredAt, payload.Token); err != nil {
		return err
	}

	return s.setPassword(ctx, u.ID, payload.Password)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, payload *auth.ChangePasswordRequest) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(u.Password, payload.OldPassword) {
		return errs.NewBadRequestError("Old password is incorrect", true, errs.Code("INVALID_PASSWORD"), nil, nil)
	}

	return s.setPassword(ctx, u.ID, payload.NewPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID uuid.UUID, plain string) error {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.tokens.RevokeAllForUser(ctx, userID, s.now())
}

// OAuthProviders lists the enabled OAuth providers.
func (s *AuthService) OAuthProviders() []string {
	return s.providers.Names()
}

// OAuthLoginURL starts the authorization code flow and returns the
// provider's consent URL.
func (s *AuthService) OAuthLoginURL(ctx context.Context, payload *auth.OAuthLoginRequest) (string, error) {
	provider, ok := s.providers.Get(payload.Provider)
	if !ok {
		return "", providerNotEnabled(payload.Provider)
	}

	state, err := oauth.NewState()
	if err != nil {
		return "", err
	}

	if err := s.states.Save(ctx, state, provider.Name()); err != nil {
		return "", err
	}

	return provider.AuthCodeURL(state), nil
}

func providerNotEnabled(name string) error {
	return errs.NewNotFoundError("OAuth provider "+name+" is not enabled", true, errs.Code("PROVIDER_NOT_ENABLED"))
}

// OAuthCallback finishes the flow. Unknown emails get a new active account;
// a pending registration for the same address is verified, since the
// provider vouches for it.
func (s *AuthService) OAuthCallback(ctx context.Context, payload *auth.OAuthCallbackRequest, client ClientInfo) (*auth.TokenResponse, error) {
	if payload.Error != "" {
		msg := "OAuth login was cancelled"
		if payload.ErrorDescription != "" {
			msg += ": " + payload.ErrorDescription
		}
		return nil, errs.NewUnauthorizedError(msg, true)
	}

	provider, ok := s.providers.Get(payload.Provider)
	if !ok {
		return nil, providerNotEnabled(payload.Provider)
	}

	issuedFor, err := s.states.Consume(ctx, payload.State)
	if err != nil && !errors.Is(err, oauth.ErrInvalidState) {
		return nil, err
	}
	if err != nil || issuedFor != provider.Name() {
		return nil, errs.NewBadRequestError("Invalid or expired OAuth state", true, errs.Code("INVALID_OAUTH_STATE"), nil, nil)
	}

	profile, err := provider.Exchange(ctx, payload.Code)
	if err != nil {
		if errors.Is(err, oauth.ErrNoVerifiedEmail) {
			return nil, errs.NewBadRequestError("Your "+provider.Name()+" account has no verified email address", true, errs.Code("OAUTH_EMAIL_UNVERIFIED"), nil, nil)
		}
		s.logger.Warn().Err(err).Str("provider", provider.Name()).Msg("oauth exchange failed")
		return nil, errs.NewUnauthorizedError("OAuth login failed", true)
	}

	u, err := s.oauthUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	if err := checkActive(u); err != nil {
		return nil, err
	}

	return s.openSession(ctx, u, client)
}

func (s *AuthService) oauthUser(ctx context.Context, profile *oauth.Profile) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		if u.Status == user.StatusInactive && !u.IsVerified() {
			if err := s.users.MarkVerified(ctx, u.ID); err != nil {
				return nil, err
			}
			return s.users.GetByID(ctx, u.ID)
		}
		return u, nil
	}
	if !sqlerr.IsNotFound(err) {
		return nil, err
	}

	// The account gets a random password; a reset sets a real one.
	random, err := password.Random(32)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(random)
	if err != nil {
		return nil, err
	}

	name := profile.Name
	if name == "" {
		name = profile.Email
	}
	now := s.now()

	u, err = s.users.Create(ctx, repository.CreateUserParams{
		Name:            name,
		Email:           profile.Email,
		PasswordHash:    hash,
		Status:          user.StatusActive,
		UserType:        user.TypeUser,
		EmailVerifiedAt: &now,
	})
	if err != nil {
		return nil, err
	}

	enqueueLogged(s.logger, "welcome_email", u.Email, s.mail.EnqueueWelcomeEmail(ctx, u.Email, u.Name))
	return u, nil
}
