package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
)

var (
	contextTokenKey   = "userToken"
	contextSessionKey = "session"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Role         user.Role `json:"role,omitempty"`
}

// newJWTConfig returns the JWT auth middleware config.
// Requests without an Authorization header go through as guests.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		Skipper: func(ctx echo.Context) bool {
			return ctx.Request().Header.Get(echo.HeaderAuthorization) == ""
		},
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  "EduCode",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getSession returns the store session bound to the request by sessionMiddleware.
func getSession(ctx echo.Context) (*store.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(*store.Session); ok {
		return sess, nil
	}
	return nil, errors.New("session not found in echo.Context")
}

// getContextUser returns the authenticated user of the request.
func getContextUser(ctx echo.Context) (user.User, error) {
	sess, err := getSession(ctx)
	if err != nil {
		return user.User{}, err
	}
	if usr, ok := sess.User(); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

func refreshToken(ctx echo.Context, conf *core.Config) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// sessionMiddleware already rejected locked accounts
	usr, err := getContextUser(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := GenerateToken(conf, GetUserClaims(conf, usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
