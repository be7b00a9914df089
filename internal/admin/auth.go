package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/kvstore"
	"golang.org/x/crypto/bcrypt"
)

// PasswordKey holds a password hash that overrides the configured one after
// the admin changed it.
const PasswordKey = "admin:password"

const minPasswordLength = 6

var ErrInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "invalid password")

// Auth checks the admin password and issues HS256 tokens.
type Auth struct {
	kv          kvstore.Store
	defaultHash []byte
	secret      []byte
	ttl         time.Duration
	timeout     time.Duration
	now         func() time.Time
}

// NewAuth takes the bcrypt hash of the initial admin password.
func NewAuth(kv kvstore.Store, passwordHash string, secret string, ttl, timeout time.Duration) *Auth {
	return &Auth{
		kv:          kv,
		defaultHash: []byte(passwordHash),
		secret:      []byte(secret),
		ttl:         ttl,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Login returns a signed token when password matches the current hash.
func (a *Auth) Login(ctx context.Context, password string) (string, time.Time, error) {
	const op = "admin.Auth.Login"

	hash, err := a.currentHash(ctx)
	if err != nil {
		return "", time.Time{}, apperror.Store(op, err)
	}
	if len(hash) == 0 || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		slog.Warn("admin login rejected", "op", op)
		return "", time.Time{}, ErrInvalidCredentials
	}

	issued := a.now()
	exp := issued.Add(a.ttl)
	claims := jwt.MapClaims{
		"sub":  "admin",
		"role": "admin",
		"iat":  issued.Unix(),
		"exp":  exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ChangePassword stores a new hash that takes precedence over the
// configured one.
func (a *Auth) ChangePassword(ctx context.Context, password, confirm string) error {
	const op = "admin.Auth.ChangePassword"

	if len(password) < minPasswordLength {
		return apperror.Invalid("newPassword", "password must be at least 6 characters")
	}
	if password != confirm {
		return apperror.Invalid("confirmPassword", "passwords do not match")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.kv.Set(ctx, PasswordKey, hash); err != nil {
		return apperror.Store(op, err)
	}
	slog.Info("admin password changed", "op", op)
	return nil
}

// Middleware rejects requests without a valid admin token.
func (a *Auth) Middleware() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    a.secret,
		SigningMethod: "HS256",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperror.Respond(c, fiber.NewError(fiber.StatusUnauthorized, "admin authentication required"))
		},
	})
}

func (a *Auth) currentHash(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	hash, err := a.kv.Get(ctx, PasswordKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return a.defaultHash, nil
	}
	if err != nil {
		return nil, err
	}
	return hash, nil
}
