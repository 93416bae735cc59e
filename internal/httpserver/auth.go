package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/middleware/auth"
	"github.com/Skotchmaster/gym_site/internal/service"
	"github.com/Skotchmaster/gym_site/internal/transport"
)

type AuthHTTP struct {
	Svc *service.UserService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return serviceError(l, "register_error", err)
	}

	l.Info("register_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, transport.AuthResponse{User: res.User, Token: res.Token})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "login_failed", err)
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.AuthResponse{User: res.User, Token: res.Token})
}

func (h *AuthHTTP) AdminLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.admin_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("admin_login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	token, err := h.Svc.AdminLogin(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(l, "admin_login_failed", err)
	}

	l.Info("admin_login_successful")
	return c.JSON(http.StatusOK, transport.AdminLoginResponse{
		User: transport.AdminIdentity{
			ID:      service.AdminSubject,
			Email:   service.NormalizeEmail(h.Svc.AdminEmail),
			IsAdmin: true,
		},
		Token: token,
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	caller := auth.UserFrom(c)
	if caller == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Svc.FindByID(ctx, caller.ID)
	if err != nil {
		return serviceError(l, "me_error", err)
	}
	if user == nil {
		if caller.IsAdmin {
			return c.JSON(http.StatusOK, transport.AdminIdentity{ID: caller.ID, Email: caller.Email, IsAdmin: true})
		}
		l.Warn("me_error", "status", 404, "reason", "user not found", "user_id", caller.ID)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) PatchMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.patch_me")

	caller := auth.UserFrom(c)
	if caller == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.PatchMeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_me_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Update(ctx, caller.ID, service.UserPatch{Name: req.Name})
	if err != nil {
		return serviceError(l, "patch_me_error", err)
	}
	if user == nil {
		l.Warn("patch_me_error", "status", 404, "reason", "user not found", "user_id", caller.ID)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) PatchUser(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	l := logging.FromContext(ctx).With("handler", "admin.patch_user", "user_id", id)

	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Update(ctx, id, service.UserPatch{
		Name:                     req.Name,
		MembershipType:           req.MembershipType,
		MembershipStatus:         req.MembershipStatus,
		UpcomingClasses:          req.UpcomingClasses,
		PersonalTrainingSessions: req.PersonalTrainingSessions,
	})
	if err != nil {
		return serviceError(l, "patch_user_error", err)
	}
	if user == nil {
		l.Warn("patch_user_error", "status", 404, "reason", "user not found")
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	l.Info("patch_user_success")
	return c.JSON(http.StatusOK, user)
}
