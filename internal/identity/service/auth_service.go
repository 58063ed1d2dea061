package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/backend/internal/audit"
	"taskhub/backend/internal/notification"
	tokendomain "taskhub/backend/internal/refreshtoken/domain"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/telemetry"
	telemetryotel "taskhub/backend/internal/telemetry/otel"
	userdomain "taskhub/backend/internal/user/domain"
	verificationdomain "taskhub/backend/internal/verification/domain"
)

// Sentinel errors for the auth service; the HTTP layer maps them to status codes.
var (
	// ErrInvalidInput wraps registration field validation failures.
	ErrInvalidInput = errors.New("invalid input")

	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already registered")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrAccountNotVerified   = errors.New("account email is not verified")
	ErrMissingRefreshToken  = errors.New("refresh token is required")
	// ErrUnrecognizedToken means the token decoded fine but no stored record
	// matches its jti (e.g. already swept, or never issued by this server).
	ErrUnrecognizedToken = errors.New("unrecognized refresh token")
	// ErrTokenMismatch means the jti matched a stored record but the token
	// bytes hash differently than what was stored at issue time.
	ErrTokenMismatch         = errors.New("refresh token does not match stored token")
	ErrTokenRevokedOrExpired = errors.New("refresh token is revoked or expired")
	ErrVerificationInvalid   = errors.New("verification token is invalid")
	ErrVerificationExpired   = errors.New("verification token has expired")
	ErrAlreadyVerified       = errors.New("account is already verified")
)

// TokenPair is the outcome of Login and Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	SetVerified(ctx context.Context, id string) error
}

// TokenRepo is the minimal refresh token repository needed by the auth service.
type TokenRepo interface {
	GetByJti(ctx context.Context, jti string) (*tokendomain.StoredRefreshToken, error)
	Save(ctx context.Context, t *tokendomain.StoredRefreshToken) error
	MarkRotated(ctx context.Context, jti, replacedByJti string, at time.Time) (bool, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

// VerificationRepo is the minimal verification token repository needed by the auth service.
type VerificationRepo interface {
	GetByToken(ctx context.Context, token string) (*verificationdomain.VerificationToken, error)
	Create(ctx context.Context, t *verificationdomain.VerificationToken) error
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// AuthService implements registration with email verification, login,
// one-time refresh rotation, and logout.
type AuthService struct {
	userRepo         UserRepo
	tokenRepo        TokenRepo
	verificationRepo VerificationRepo
	mailer           notification.Mailer
	hasher           *security.Hasher
	codec            *security.TokenCodec
	accessTTL        time.Duration
	refreshTTL       time.Duration
	verifyBaseURL    string
	auditor          audit.AuditLogger
	emitter          telemetry.EventEmitter
	metrics          *telemetryotel.Metrics
}

// NewAuthService returns an AuthService with the given dependencies.
// auditor, emitter, and metrics may be nil.
func NewAuthService(
	userRepo UserRepo,
	tokenRepo TokenRepo,
	verificationRepo VerificationRepo,
	mailer notification.Mailer,
	hasher *security.Hasher,
	codec *security.TokenCodec,
	accessTTL, refreshTTL time.Duration,
	verifyBaseURL string,
	auditor audit.AuditLogger,
	emitter telemetry.EventEmitter,
	metrics *telemetryotel.Metrics,
) *AuthService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &AuthService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		verificationRepo: verificationRepo,
		mailer:           mailer,
		hasher:           hasher,
		codec:            codec,
		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
		verifyBaseURL:    verifyBaseURL,
		auditor:          auditor,
		emitter:          emitter,
		metrics:          metrics,
	}
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Title     string
	FirstName string
	LastName  string
}

// Register creates an unverified user and emails a verification link.
// The user cannot log in until VerifyAccount succeeds.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*userdomain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		Title:        strings.TrimSpace(in.Title),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hashed,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.issueVerification(ctx, user); err != nil {
		// The account exists; the user can request a new link via resend.
		log.Printf("auth: verification mail for %s failed: %v", user.ID, err)
	}
	s.auditor.LogEvent(ctx, user.ID, "register", "user", "")
	telemetry.EmitAsync(s.emitter, telemetry.NewEvent(user.ID, "user_registered", "auth", nil))
	return user, nil
}

// VerifyAccount marks the account for the given verification token as
// verified and consumes the token.
func (s *AuthService) VerifyAccount(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrVerificationInvalid
	}
	vt, err := s.verificationRepo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if vt == nil {
		return ErrVerificationInvalid
	}
	if vt.Expired(time.Now().UTC()) {
		_ = s.verificationRepo.Delete(ctx, token)
		return ErrVerificationExpired
	}
	if err := s.userRepo.SetVerified(ctx, vt.UserID); err != nil {
		return err
	}
	if err := s.verificationRepo.Delete(ctx, token); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, vt.UserID, "verify_account", "user", "")
	return nil
}

// ResendVerification issues a fresh verification token for the account with
// the given email, invalidating earlier tokens. Unknown emails return nil so
// the endpoint does not reveal which addresses are registered.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	if user.Verified {
		return ErrAlreadyVerified
	}
	if err := s.verificationRepo.DeleteAllForUser(ctx, user.ID); err != nil {
		return err
	}
	return s.issueVerification(ctx, user)
}

func (s *AuthService) issueVerification(ctx context.Context, user *userdomain.User) error {
	now := time.Now().UTC()
	vt := &verificationdomain.VerificationToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(verificationdomain.DefaultTTL),
		CreatedAt: now,
	}
	if err := s.verificationRepo.Create(ctx, vt); err != nil {
		return err
	}
	link := fmt.Sprintf("%s?token=%s", strings.TrimSuffix(s.verifyBaseURL, "/"), vt.Token)
	return s.mailer.SendVerificationEmail(ctx, user.Email, link)
}

// Login authenticates by username or email plus password and returns a fresh
// token pair. Exactly one refresh token record is stored per login.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrAuthenticationFailed
	}
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.RecordLogin(ctx, "bad_credentials")
		s.auditor.LogEvent(ctx, "", "login_failure", "session", "unknown identifier")
		return nil, ErrAuthenticationFailed
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.metrics.RecordLogin(ctx, "bad_credentials")
		s.auditor.LogEvent(ctx, user.ID, "login_failure", "session", "password mismatch")
		return nil, ErrAuthenticationFailed
	}
	if !user.Verified {
		s.metrics.RecordLogin(ctx, "unverified")
		return nil, ErrAccountNotVerified
	}
	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLogin(ctx, "success")
	s.auditor.LogEvent(ctx, user.ID, "login_success", "session", "")
	telemetry.EmitAsync(s.emitter, telemetry.NewEvent(user.ID, "login_success", "auth", nil))
	return pair, nil
}

// Refresh rotates the given refresh token exactly once and returns a new
// token pair. A second call with the same raw token fails with
// ErrTokenRevokedOrExpired; the race between two concurrent calls is decided
// by the store's conditional update.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrMissingRefreshToken
	}
	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != security.TokenTypeRefresh {
		return nil, security.ErrInvalidToken
	}
	stored, err := s.tokenRepo.GetByJti(ctx, claims.JTI)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrUnrecognizedToken
	}
	if !security.RefreshTokenHashEqual(rawToken, stored.TokenHash) {
		s.auditor.LogEvent(ctx, stored.UserID, "refresh_mismatch", "session", "token hash divergence")
		return nil, ErrTokenMismatch
	}
	now := time.Now().UTC()
	if stored.Revoked() {
		s.metrics.RecordRefreshReplay(ctx)
		s.auditor.LogEvent(ctx, stored.UserID, "refresh_replay", "session", "rotated token presented again")
		telemetry.EmitAsync(s.emitter, telemetry.NewEvent(stored.UserID, "refresh_replay", "auth", nil))
		return nil, ErrTokenRevokedOrExpired
	}
	if stored.Expired(now) {
		return nil, ErrTokenRevokedOrExpired
	}
	newRefresh, newJti, refreshExp, err := s.codec.Issue(stored.UserID, security.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	rotated, err := s.tokenRepo.MarkRotated(ctx, claims.JTI, newJti, now)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// Lost the race: someone else rotated this jti between our read and
		// our update.
		s.metrics.RecordRefreshReplay(ctx)
		s.auditor.LogEvent(ctx, stored.UserID, "refresh_replay", "session", "concurrent rotation")
		return nil, ErrTokenRevokedOrExpired
	}
	if err := s.tokenRepo.Save(ctx, &tokendomain.StoredRefreshToken{
		ID:        uuid.New().String(),
		UserID:    stored.UserID,
		Jti:       newJti,
		TokenHash: security.HashRefreshToken(newRefresh),
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.codec.Issue(stored.UserID, security.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRefreshRotation(ctx)
	s.auditor.LogEvent(ctx, stored.UserID, "refresh_rotated", "session", "")
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp,
		UserID:       stored.UserID,
	}, nil
}

// Logout removes every stored refresh token for the subject. Idempotent:
// logging out with no live tokens succeeds.
func (s *AuthService) Logout(ctx context.Context, p security.Principal) error {
	if err := s.tokenRepo.DeleteAllForUser(ctx, p.UserID); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, p.UserID, "logout", "session", "")
	telemetry.EmitAsync(s.emitter, telemetry.NewEvent(p.UserID, "logout", "auth", nil))
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, userID string) (*TokenPair, error) {
	refreshToken, jti, refreshExp, err := s.codec.Issue(userID, security.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.codec.Issue(userID, security.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.tokenRepo.Save(ctx, &tokendomain.StoredRefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Jti:       jti,
		TokenHash: security.HashRefreshToken(refreshToken),
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		UserID:       userID,
	}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return nil
}
