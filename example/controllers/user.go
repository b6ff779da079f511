// Package controllers holds the example application's controllers.
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/mvc"
	"github.com/dmitrymomot/mvc/example/views"
	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
)

// User serves login, logout, registration and profiles.
//
//	/user/login          form and POST target
//	/user/logout
//	/user/register       form and POST target
//	/user/view/<id>      profile, members only
type User struct {
	Hasher auth.Hasher
}

func (User) Name() string { return "User" }

func (h User) Actions(r mvc.ActionRouter) {
	r.Action("default_index", 0, h.login)
	r.Action("login", 0, h.login)
	r.Action("logout", 0, h.logout)
	r.Action("register", 0, h.register)
	r.Action("view", 1, h.view)
}

func (User) login(c mvc.Context, _ []string) error {
	if err := c.Auth().RequireNoSession(); err != nil {
		return err
	}
	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, views.Login(c.Page(), false))
	}

	ok, err := c.Auth().Login(c, c.Form("username"), c.Form("password"))
	if err != nil {
		return err
	}
	if !ok {
		return c.Render(http.StatusOK, views.Login(c.Page(), true))
	}
	return c.Redirect("/")
}

func (User) logout(c mvc.Context, _ []string) error {
	if err := c.Auth().Logout(c); err != nil {
		return err
	}
	return c.Info("Logged out", "You have been logged out. <a href=\""+c.Page().BaseURL+"/\">Back to the home page</a>.")
}

func (h User) register(c mvc.Context, _ []string) error {
	if err := c.Auth().RequireNoSession(); err != nil {
		return err
	}
	if allowed, err := c.Auth().Permission(entity.CanRegister); err != nil {
		return err
	} else if !allowed {
		return mvc.ErrForbidden("Registration is closed.")
	}
	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, views.Register(c.Page()))
	}

	username := strings.TrimSpace(c.Form("username"))
	password := c.Form("password")
	if username == "" || len(password) < 8 {
		return mvc.ErrBadRequest("A username and a password of at least 8 characters are required.")
	}

	users := entity.NewUsers(c.DB())
	if _, err := users.ByUsername(c, username); err == nil {
		return mvc.ErrBadRequest("That username is taken.", mvc.WithTitle("Registration"))
	} else if !errors.Is(err, db.ErrNoRows) {
		return err
	}

	hash, err := h.Hasher.Hash(password)
	if err != nil {
		return err
	}
	if _, err := users.Create(c, entity.User{
		Username:      username,
		Password:      hash,
		Email:         c.Form("email"),
		PermissionsID: 2,
	}); err != nil {
		return err
	}

	if _, err := c.Auth().Login(c, username, password); err != nil {
		return err
	}
	return c.Redirect("/")
}

func (User) view(c mvc.Context, _ []string) error {
	if err := c.Auth().RequireSession(); err != nil {
		return err
	}

	u, err := entity.NewUsers(c.DB()).ByID(c, mvc.Arg[int64](c, 0))
	if errors.Is(err, db.ErrNoRows) {
		return mvc.ErrNotFound("No such user.")
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.Profile(c.Page(), u))
}
