package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
)

// sessionMiddleware binds every request to a store session: the token subject's when a valid token
// was presented, a guest's otherwise.
func sessionMiddleware(st *store.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess := st.NewSession()
			if claims, err := getContextClaims(ctx); err == nil {
				if sess, err = st.SessionFor(claims.Subject); err != nil {
					if errors.Is(err, user.ErrNotFound) {
						return errUnauthorized
					}
					return err
				}
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

func authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if usr.IsAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
