package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
)

type userApi struct {
	conf  *core.Config
	store *store.Store
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, conf *core.Config, st *store.Store) {
	api := userApi{conf: conf, store: st}

	ug := g.Group("/users")
	adm := adminMiddleware()

	// un-authed endpoints
	ug.POST("/login", api.login)
	ug.POST("/register", api.register)

	// authed endpoints
	ug.POST("/token-refresh", api.refreshToken, auth)
	ug.GET("/me", api.me, auth)
	ug.PUT("/me", api.updateProfile, auth)
	ug.PUT("/me/password", api.changePassword, auth)
	ug.GET("/:id", api.retrieve, auth)

	// admin endpoints
	ug.GET("", api.query, auth, adm)
	ug.POST("", api.create, auth, adm)
	ug.PUT("/:id/status", api.updateStatus, auth, adm)
}

// Handlers

func (api *userApi) authResponse(ctx echo.Context, code int, usr user.User) error {
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, AuthResponse{Token: token, User: usr})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.store.NewSession().Login(data.Email, data.Password)
	if err != nil {
		// do not tell attackers which of the email or the password is wrong
		if errors.Is(err, user.ErrNotFound) || errors.Is(err, user.ErrInvalidCredential) {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "logging in")
	}
	return api.authResponse(ctx, http.StatusOK, usr)
}

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	usr, err := api.store.NewSession().Register(data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return api.authResponse(ctx, http.StatusCreated, usr)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateProfile(ctx echo.Context) error {
	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	usr, err := sess.UpdateProfile(data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	var data ChangePasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePasswordRequest")
	}
	if err := core.ValidateStruct(&data); err != nil {
		return err
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	if err := sess.ChangeOwnPassword(data.CurrentPassword, data.NewPassword); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password changed successfully"})
}

// retrieve shows a profile to its owner and to admins; anyone else gets a 404.
func (api *userApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if ctx.Param("id") != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpNotFound
	}
	usr, err := api.store.User(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	var filter user.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	var page Page
	page.Bind(ctx)

	users := api.store.Users(filter)
	lo, hi := page.Bounds(len(users))
	return ctx.JSON(http.StatusOK, users[lo:hi])
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	usr, err := sess.AdminCreateUser(data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) updateStatus(ctx echo.Context) error {
	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	sess, err := getSession(ctx)
	if err != nil {
		return err
	}
	usr, err := sess.UpdateUserStatus(ctx.Param("id"), user.Status(data.Status))
	if err != nil {
		return errors.Wrap(err, "updating user status")
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	AuthResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}

	StatusRequest struct {
		Status string `json:"status"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.ValidateStruct(lr)
}
