package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/identity"
	"github.com/joshua-takyi/rentinout/internal/mailer"
	"github.com/joshua-takyi/rentinout/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthOptions struct {
	// Domain is the public base URL of this API, used in verification links.
	Domain    string
	VerifyTTL time.Duration
	ResetTTL  time.Duration
	// Inbox receives contact form mail.
	Inbox string
}

// Session is returned by every successful login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  models.UserRepo
	tokens models.TokenRepo
	issuer *helpers.TokenIssuer
	mail   mailer.Dispatcher
	google identity.Verifier
	opts   AuthOptions
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthService(users models.UserRepo, tokens models.TokenRepo, issuer *helpers.TokenIssuer, mail mailer.Dispatcher, google identity.Verifier, opts AuthOptions, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		issuer: issuer,
		mail:   mail,
		google: google,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (as *AuthService) SignUp(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}

	hashed, err := helpers.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FullName:  req.FullName,
		Email:     models.NormalizeEmail(req.Email),
		Password:  hashed,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		Country:   req.Country,
		City:      req.City,
	}

	created, err := as.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := as.sendVerification(ctx, created); err != nil {
		// the account exists either way; the user can ask for a new link
		as.logger.Error("Failed to issue verification email", "user_id", created.ID.Hex(), "error", err)
	}
	return created, nil
}

// Login fails with the same error for an unknown email and a wrong password.
func (as *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*Session, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := as.users.GetUserByEmail(ctx, models.NormalizeEmail(req.Email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CheckPassword(user.Password, req.Password) {
		return nil, models.ErrInvalidCredentials
	}
	return as.openSession(user)
}

func (as *AuthService) LoginWithGoogle(ctx context.Context, req *models.GoogleLoginRequest) (*Session, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	if as.google == nil {
		return nil, fmt.Errorf("%w: google sign-in is not configured", models.ErrUpstream)
	}

	profile, err := as.google.Verify(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	user, err := as.users.GetUserByEmail(ctx, models.NormalizeEmail(profile.Email))
	if err != nil {
		return nil, err
	}
	return as.openSession(user)
}

func (as *AuthService) openSession(user *models.User) (*Session, error) {
	if !user.Active() {
		return nil, models.ErrNotActive
	}
	token, err := as.issuer.CreateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &Session{Token: token, User: user}, nil
}

// RefreshToken issues a new token for the user's current role.
func (as *AuthService) RefreshToken(user *models.User) (string, error) {
	return as.issuer.CreateToken(user.ID.Hex(), user.Role)
}

// VerifyEmail consumes a verification link. A stale or wrong link only
// removes the pending record; the account stays and can request a new one.
func (as *AuthService) VerifyEmail(ctx context.Context, userID primitive.ObjectID, raw string) error {
	record, err := as.tokens.GetToken(ctx, models.TokenVerification, userID)
	if err != nil {
		return err
	}

	if record.Expired(as.now()) {
		if err := as.tokens.DeleteToken(ctx, models.TokenVerification, userID); err != nil {
			as.logger.Error("Failed to remove expired verification", "user_id", userID.Hex(), "error", err)
		}
		return models.ErrExpired
	}
	if !helpers.CheckPassword(record.HashedCode, raw) {
		if err := as.tokens.DeleteToken(ctx, models.TokenVerification, userID); err != nil {
			as.logger.Error("Failed to remove rejected verification", "user_id", userID.Hex(), "error", err)
		}
		return models.ErrInvalidToken
	}

	if _, err := as.users.UpdateUser(ctx, userID, bson.M{"email_verified": true}); err != nil {
		return err
	}
	return as.tokens.DeleteToken(ctx, models.TokenVerification, userID)
}

func (as *AuthService) ResendVerification(ctx context.Context, req *models.EmailRequest) error {
	if err := models.ValidateStruct(req); err != nil {
		return err
	}
	user, err := as.users.GetUserByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return models.NewValidationError("email", "verified", "email is already verified")
	}
	return as.sendVerification(ctx, user)
}

func (as *AuthService) sendVerification(ctx context.Context, user *models.User) error {
	raw, err := as.issueToken(ctx, models.TokenVerification, user.ID, as.opts.VerifyTTL)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/users/verify/%s/%s", as.opts.Domain, user.ID.Hex(), raw)
	msg, err := mailer.VerificationEmail(user.Email, link, ttlText(as.opts.VerifyTTL))
	if err != nil {
		return err
	}
	return as.mail.Dispatch(ctx, msg)
}

func (as *AuthService) RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) error {
	if err := models.ValidateStruct(req); err != nil {
		return err
	}
	user, err := as.users.GetUserByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if !user.Active() {
		return models.ErrNotActive
	}

	raw, err := as.issueToken(ctx, models.TokenPasswordReset, user.ID, as.opts.ResetTTL)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/%s/%s", req.RedirectURL, user.ID.Hex(), raw)
	msg, err := mailer.ResetEmail(user.Email, link, ttlText(as.opts.ResetTTL))
	if err != nil {
		return err
	}
	return as.mail.Dispatch(ctx, msg)
}

// ResetPassword consumes a reset record. An expired record is removed, so
// a retry with the same link reports ErrResetNotFound.
func (as *AuthService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := models.ValidateStruct(req); err != nil {
		return err
	}
	userID, err := helpers.ParseObjectID("userId", req.UserID)
	if err != nil {
		return err
	}

	record, err := as.tokens.GetToken(ctx, models.TokenPasswordReset, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrResetNotFound
	}
	if err != nil {
		return err
	}

	if record.Expired(as.now()) {
		if err := as.tokens.DeleteToken(ctx, models.TokenPasswordReset, userID); err != nil {
			return err
		}
		return models.ErrExpired
	}
	if !helpers.CheckPassword(record.HashedCode, req.ResetString) {
		return models.ErrInvalidToken
	}

	hashed, err := helpers.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	fields := bson.M{"password": hashed, "password_changed": as.now().UTC()}
	if _, err := as.users.UpdateUser(ctx, userID, fields); err != nil {
		return err
	}
	return as.tokens.DeleteToken(ctx, models.TokenPasswordReset, userID)
}

// Contact forwards a visitor's message to the site inbox.
func (as *AuthService) Contact(ctx context.Context, req *models.ContactRequest) error {
	if err := models.ValidateStruct(req); err != nil {
		return err
	}
	msg, err := mailer.ContactEmail(as.opts.Inbox, mailer.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Message:   req.Message,
	})
	if err != nil {
		return err
	}
	return as.mail.Dispatch(ctx, msg)
}

// issueToken stores a hashed single-use code and returns the raw value to mail.
func (as *AuthService) issueToken(ctx context.Context, kind models.TokenKind, userID primitive.ObjectID, ttl time.Duration) (string, error) {
	raw := helpers.NewUniqueString(userID.Hex())
	hashed, err := helpers.HashPassword(raw)
	if err != nil {
		return "", err
	}
	now := as.now().UTC()
	record := &models.TokenRecord{
		UserID:     userID,
		HashedCode: hashed,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := as.tokens.ReplaceToken(ctx, kind, record); err != nil {
		return "", err
	}
	return raw, nil
}

func ttlText(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
