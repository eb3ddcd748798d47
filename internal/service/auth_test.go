package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/deppfellow/quiz-api/internal/config"
	"github.com/deppfellow/quiz-api/internal/errs"
	"github.com/deppfellow/quiz-api/internal/lib/oauth"
	"github.com/deppfellow/quiz-api/internal/lib/password"
	"github.com/deppfellow/quiz-api/internal/lib/token"
	"github.com/deppfellow/quiz-api/internal/model/auth"
	"github.com/deppfellow/quiz-api/internal/model/user"
)

var testAuthConfig = config.AuthConfig{
	SecretKey:        "test-secret-key-0123456789",
	JWTAlgorithm:     "HS256",
	AccessTokenTTL:   time.Hour,
	RefreshTokenTTL:  24 * time.Hour,
	VerificationTTL:  24 * time.Hour,
	PasswordResetTTL: time.Hour,
	BcryptCost:       4,
}

type authFixture struct {
	svc    *AuthService
	users  *memUsers
	tokens *memTokens
	mail   *fakeMail
	states *memStates
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  newMemUsers(),
		tokens: newMemTokens(),
		mail:   &fakeMail{},
		states: &memStates{states: map[string]string{}},
	}
	f.svc = &AuthService{
		users:     f.users,
		tokens:    f.tokens,
		mail:      f.mail,
		jwt:       token.NewManager(testAuthConfig),
		hasher:    password.NewHasher(testAuthConfig.BcryptCost),
		providers: oauth.NewRegistry(config.OAuthConfig{}),
		states:    f.states,
		cfg:       testAuthConfig,
		logger:    &nopLogger,
		now:       time.Now,
	}
	return f
}

// addUser stores an account with the given password and status.
func (f *authFixture) addUser(t *testing.T, email, plain string, status user.Status) *user.User {
	t.Helper()
	hash, err := f.svc.hasher.Hash(plain)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	return f.users.put(&user.User{Name: "Jane", Email: email, Password: hash, Status: status, UserType: user.TypeUser, EmailVerifiedAt: &now})
}

type memStates struct {
	states map[string]string
}

func (m *memStates) Save(_ context.Context, state, provider string) error {
	m.states[state] = provider
	return nil
}

func (m *memStates) Consume(_ context.Context, state string) (string, error) {
	p, ok := m.states[state]
	if !ok {
		return "", oauth.ErrInvalidState
	}
	delete(m.states, state)
	return p, nil
}

func requireStatus(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *errs.HTTPError with status %d, got %v", status, err)
	}
	if httpErr.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, httpErr.Status, httpErr.Message)
	}
	return httpErr
}

var client = ClientInfo{IP: "127.0.0.1", UserAgent: "test"}

func TestRegister(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	u, err := f.svc.Register(ctx, &auth.RegisterRequest{Name: "Jane", Email: "Jane@Example.com", Password: "secret123", ConfirmPassword: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if u.Status != user.StatusInactive || u.IsVerified() {
		t.Fatalf("expected an inactive unverified user, got %+v", u)
	}
	if u.Password == "secret123" || !f.svc.hasher.Compare(u.Password, "secret123") {
		t.Fatal("expected the password to be stored as a bcrypt hash")
	}

	sent := f.mail.last()
	if sent.kind != "verification" || len(sent.token) != password.OTPLength {
		t.Fatalf("expected a verification email with an otp, got %+v", sent)
	}
	if u.EmailVerifyToken == nil || *u.EmailVerifyToken != sent.token {
		t.Fatal("expected the mailed otp to be stored on the user")
	}

	_, err = f.svc.Register(ctx, &auth.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	httpErr := requireStatus(t, err, 400)
	if httpErr.Code != "EMAIL_ALREADY_EXISTS" {
		t.Fatalf("unexpected code %s", httpErr.Code)
	}
}

func TestRegisterSurvivesQueueFailure(t *testing.T) {
	f := newAuthFixture()
	f.mail.err = errors.New("redis down")

	if _, err := f.svc.Register(context.Background(), &auth.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123", ConfirmPassword: "secret123"}); err != nil {
		t.Fatalf("expected enqueue failure to be swallowed, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.addUser(t, "jane@example.com", "secret123", user.StatusActive)
	f.addUser(t, "blocked@example.com", "secret123", user.StatusBlocked)

	tests := []struct {
		name   string
		email  string
		pass   string
		status int
	}{
		{"unknown email", "nobody@example.com", "secret123", 401},
		{"wrong password", "jane@example.com", "wrong-pass1", 401},
		{"blocked account", "blocked@example.com", "secret123", 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, &auth.LoginRequest{Email: tt.email, Password: tt.pass}, client)
			requireStatus(t, err, tt.status)
		})
	}

	resp, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "secret123"}, client)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("unexpected token response %+v", resp)
	}

	session, err := f.tokens.GetByAccessToken(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("expected a stored session: %v", err)
	}
	if !session.ExpiredAt.Equal(resp.ExpiresAt) {
		t.Fatalf("expected session expiry %s to match access expiry %s", session.ExpiredAt, resp.ExpiresAt)
	}
	if session.IP == nil || *session.IP != "127.0.0.1" {
		t.Fatalf("expected client ip on session, got %v", session.IP)
	}
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	stored := f.addUser(t, "jane@example.com", "secret123", user.StatusActive)

	resp, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "secret123"}, client)
	if err != nil {
		t.Fatal(err)
	}

	u, err := f.svc.Authenticate(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != stored.ID {
		t.Fatalf("expected user %s, got %s", stored.ID, u.ID)
	}

	if _, err := f.svc.Authenticate(ctx, resp.RefreshToken); err == nil {
		t.Fatal("a refresh token must not authenticate requests")
	}
	if _, err := f.svc.Authenticate(ctx, "garbage"); err == nil {
		t.Fatal("expected garbage token to be rejected")
	}

	if err := f.svc.Logout(ctx, resp.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	_, err = f.svc.Authenticate(ctx, resp.AccessToken)
	requireStatus(t, err, 401)

	_, err = f.svc.Refresh(ctx, &auth.RefreshRequest{RefreshToken: resp.RefreshToken}, client)
	requireStatus(t, err, 401)
}

func TestAuthenticateRejectsBlockedUser(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	u := f.addUser(t, "jane@example.com", "secret123", user.StatusActive)

	resp, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "secret123"}, client)
	if err != nil {
		t.Fatal(err)
	}

	_ = f.users.update(u.ID, func(u *user.User) { u.Status = user.StatusBlocked })

	_, err = f.svc.Authenticate(ctx, resp.AccessToken)
	requireStatus(t, err, 403)
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.addUser(t, "jane@example.com", "secret123", user.StatusActive)

	first, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "secret123"}, client)
	if err != nil {
		t.Fatal(err)
	}

	second, err := f.svc.Refresh(ctx, &auth.RefreshRequest{RefreshToken: first.RefreshToken}, client)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.AccessToken == first.AccessToken || second.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new token pair")
	}

	if _, err := f.svc.Authenticate(ctx, second.AccessToken); err != nil {
		t.Fatalf("new access token should work: %v", err)
	}
	_, err = f.svc.Authenticate(ctx, first.AccessToken)
	requireStatus(t, err, 401)

	_, err = f.svc.Refresh(ctx, &auth.RefreshRequest{RefreshToken: first.RefreshToken}, client)
	requireStatus(t, err, 401)

	_, err = f.svc.Refresh(ctx, &auth.RefreshRequest{RefreshToken: second.AccessToken}, client)
	requireStatus(t, err, 401)
}

func TestVerifyEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	u, err := f.svc.Register(ctx, &auth.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	if err != nil {
		t.Fatal(err)
	}
	otp := *u.EmailVerifyToken

	wrong := "000000"
	if otp == wrong {
		wrong = "111111"
	}
	err = f.svc.VerifyEmail(ctx, &auth.VerifyEmailRequest{Email: "jane@example.com", Token: wrong})
	requireStatus(t, err, 400)

	if err := f.svc.VerifyEmail(ctx, &auth.VerifyEmailRequest{Email: "jane@example.com", Token: otp}); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	verified, _ := f.users.GetByID(ctx, u.ID)
	if !verified.IsVerified() || !verified.IsActive() {
		t.Fatalf("expected an active verified user, got %+v", verified)
	}
	if f.mail.last().kind != "welcome" {
		t.Fatalf("expected a welcome email, got %+v", f.mail.last())
	}

	err = f.svc.VerifyEmail(ctx, &auth.VerifyEmailRequest{Email: "jane@example.com", Token: otp})
	httpErr := requireStatus(t, err, 400)
	if httpErr.Code != "EMAIL_ALREADY_VERIFIED" {
		t.Fatalf("unexpected code %s", httpErr.Code)
	}
}

func TestVerifyEmailKeepsBlockedUserBlocked(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	u, err := f.svc.Register(ctx, &auth.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.users.update(u.ID, func(u *user.User) { u.Status = user.StatusBlocked }); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.VerifyEmail(ctx, &auth.VerifyEmailRequest{Email: "jane@example.com", Token: *u.EmailVerifyToken}); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	stored, _ := f.users.GetByID(ctx, u.ID)
	if !stored.IsVerified() {
		t.Fatal("expected the email to be verified")
	}
	if stored.Status != user.StatusBlocked {
		t.Fatalf("expected the user to stay blocked, got %s", stored.Status)
	}

	_, err = f.svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "secret123"}, client)
	requireStatus(t, err, 403)
}

func TestVerifyEmailExpired(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	u, err := f.svc.Register(ctx, &auth.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	if err != nil {
		t.Fatal(err)
	}

	f.svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	err = f.svc.VerifyEmail(ctx, &auth.VerifyEmailRequest{Email: "jane@example.com", Token: *u.EmailVerifyToken})
	requireStatus(t, err, 400)
}

func TestResendVerification(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if err := f.svc.ResendVerification(ctx, &auth.EmailRequest{Email: "nobody@example.com"}); err != nil {
		t.Fatalf("unknown email should succeed silently, got %v", err)
	}
	if len(f.mail.sent) != 0 {
		t.Fatal("expected no email for unknown address")
	}

	u, _ := f.svc.Register(ctx, &auth.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	if err := f.svc.ResendVerification(ctx, &auth.EmailRequest{Email: "jane@example.com"}); err != nil {
		t.Fatal(err)
	}

	stored, _ := f.users.GetByID(ctx, u.ID)
	if f.mail.last().token != *stored.EmailVerifyToken {
		t.Fatal("expected the latest mailed otp to be the stored one")
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	u := f.addUser(t, "jane@example.com", "secret123", user.StatusActive)

	session, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "secret123"}, client)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.ForgotPassword(ctx, &auth.EmailRequest{Email: "nobody@example.com"}); err != nil {
		t.Fatalf("unknown email should succeed silently, got %v", err)
	}
	if err := f.svc.ForgotPassword(ctx, &auth.EmailRequest{Email: "jane@example.com"}); err != nil {
		t.Fatal(err)
	}
	sent := f.mail.last()
	if sent.kind != "password_reset" {
		t.Fatalf("expected a password reset email, got %+v", sent)
	}

	bad := &auth.ResetPasswordRequest{Email: "jane@example.com", Token: "999999", Password: "newpass123", ConfirmPassword: "newpass123"}
	if sent.token == bad.Token {
		bad.Token = "888888"
	}
	requireStatus(t, f.svc.ResetPassword(ctx, bad), 400)

	err = f.svc.ResetPassword(ctx, &auth.ResetPasswordRequest{Email: "jane@example.com", Token: sent.token, Password: "newpass123", ConfirmPassword: "newpass123"})
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	stored, _ := f.users.GetByID(ctx, u.ID)
	if !f.svc.hasher.Compare(stored.Password, "newpass123") {
		t.Fatal("expected the new password to be stored")
	}
	if stored.PasswordResetToken != nil {
		t.Fatal("expected the reset token to be cleared")
	}

	_, err = f.svc.Authenticate(ctx, session.AccessToken)
	requireStatus(t, err, 401)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	u := f.addUser(t, "jane@example.com", "secret123", user.StatusActive)

	err := f.svc.ChangePassword(ctx, u.ID, &auth.ChangePasswordRequest{OldPassword: "nope", NewPassword: "another123", ConfirmPassword: "another123"})
	httpErr := requireStatus(t, err, 400)
	if httpErr.Code != "INVALID_PASSWORD" {
		t.Fatalf("unexpected code %s", httpErr.Code)
	}

	if err := f.svc.ChangePassword(ctx, u.ID, &auth.ChangePasswordRequest{OldPassword: "secret123", NewPassword: "another123", ConfirmPassword: "another123"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, &auth.LoginRequest{Email: "jane@example.com", Password: "another123"}, client); err != nil {
		t.Fatalf("expected login with the new password, got %v", err)
	}
}

type fakeProvider struct {
	profile *oauth.Profile
	err     error
}

func (p *fakeProvider) Name() string { return oauth.ProviderGitHub }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.test/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(context.Context, string) (*oauth.Profile, error) {
	return p.profile, p.err
}

func TestOAuthFlow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	provider := &fakeProvider{profile: &oauth.Profile{ProviderUserID: "42", Email: "octo@example.com", Name: "Octo Cat"}}
	f.svc.providers.Add(provider)

	_, err := f.svc.OAuthLoginURL(ctx, &auth.OAuthLoginRequest{Provider: "google"})
	requireStatus(t, err, 404)

	raw, err := f.svc.OAuthLoginURL(ctx, &auth.OAuthLoginRequest{Provider: "github"})
	if err != nil {
		t.Fatalf("OAuthLoginURL: %v", err)
	}
	u, _ := url.Parse(raw)
	state := u.Query().Get("state")
	if _, ok := f.states.states[state]; !ok {
		t.Fatal("expected the state to be stored")
	}

	_, err = f.svc.OAuthCallback(ctx, &auth.OAuthCallbackRequest{Provider: "github", State: "forged", Code: "c"}, client)
	requireStatus(t, err, 400)

	resp, err := f.svc.OAuthCallback(ctx, &auth.OAuthCallbackRequest{Provider: "github", State: state, Code: "c"}, client)
	if err != nil {
		t.Fatalf("OAuthCallback: %v", err)
	}
	if resp.User.Email != "octo@example.com" || !resp.User.IsActive() || !resp.User.IsVerified() {
		t.Fatalf("expected an active verified user, got %+v", resp.User)
	}
	if f.mail.last().kind != "welcome" {
		t.Fatal("expected a welcome email for the new account")
	}

	_, err = f.svc.OAuthCallback(ctx, &auth.OAuthCallbackRequest{Provider: "github", State: state, Code: "c"}, client)
	requireStatus(t, err, 400)
}

func TestOAuthCallbackLinksPendingRegistration(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.svc.providers.Add(&fakeProvider{profile: &oauth.Profile{Email: "jane@example.com", Name: "Jane"}})

	registered, err := f.svc.Register(ctx, &auth.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	if err != nil {
		t.Fatal(err)
	}
	_ = f.states.Save(ctx, "s1", "github")

	resp, err := f.svc.OAuthCallback(ctx, &auth.OAuthCallbackRequest{Provider: "github", State: "s1", Code: "c"}, client)
	if err != nil {
		t.Fatalf("OAuthCallback: %v", err)
	}
	if resp.User.ID != registered.ID || !resp.User.IsActive() {
		t.Fatalf("expected the pending account to be activated, got %+v", resp.User)
	}
}

func TestOAuthCallbackErrors(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	provider := &fakeProvider{err: oauth.ErrNoVerifiedEmail}
	f.svc.providers.Add(provider)

	_, err := f.svc.OAuthCallback(ctx, &auth.OAuthCallbackRequest{Provider: "github", State: "x", Error: "access_denied"}, client)
	requireStatus(t, err, 401)

	_ = f.states.Save(ctx, "s1", "github")
	_, err = f.svc.OAuthCallback(ctx, &auth.OAuthCallbackRequest{Provider: "github", State: "s1", Code: "c"}, client)
	httpErr := requireStatus(t, err, 400)
	if httpErr.Code != "OAUTH_EMAIL_UNVERIFIED" {
		t.Fatalf("unexpected code %s", httpErr.Code)
	}

	provider.err = errors.New("bad code")
	_ = f.states.Save(ctx, "s2", "github")
	_, err = f.svc.OAuthCallback(ctx, &auth.OAuthCallbackRequest{Provider: "github", State: "s2", Code: "c"}, client)
	requireStatus(t, err, 401)
}
