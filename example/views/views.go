// Package views renders the example pages.
package views

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mvc"
	"github.com/dmitrymomot/mvc/pkg/entity"
)

func page(p mvc.Page, title string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s - %s</title></head>\n<body>\n",
			templ.EscapeString(p.SiteTitle), templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}

// Home greets the visitor and shows the visit counter.
func Home(p mvc.Page, username string, visits int64) templ.Component {
	return page(p, "Home", func(w io.Writer) error {
		name := "guest"
		if username != "" {
			name = username
		}
		_, err := fmt.Fprintf(w, "<h1>Hello, %s</h1>\n<p>This page was served %d times.</p>\n"+
			"<p><a href=\"%s/user/login\">Log in</a> | <a href=\"%s/user/register\">Register</a></p>",
			templ.EscapeString(name), visits, p.BaseURL, p.BaseURL)
		return err
	})
}

// Login is the login form.
func Login(p mvc.Page, failed bool) templ.Component {
	return page(p, "Log in", func(w io.Writer) error {
		if failed {
			if _, err := io.WriteString(w, "<p class=\"error\">Wrong username or password.</p>\n"); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "<form method=\"post\" action=\"%s/user/login\">\n"+
			"<input name=\"username\" placeholder=\"Username\">\n"+
			"<input name=\"password\" type=\"password\" placeholder=\"Password\">\n"+
			"<button>Log in</button>\n</form>", p.BaseURL)
		return err
	})
}

// Register is the sign-up form.
func Register(p mvc.Page) templ.Component {
	return page(p, "Register", func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "<form method=\"post\" action=\"%s/user/register\">\n"+
			"<input name=\"username\" placeholder=\"Username\">\n"+
			"<input name=\"email\" type=\"email\" placeholder=\"Email\">\n"+
			"<input name=\"password\" type=\"password\" placeholder=\"Password\">\n"+
			"<button>Register</button>\n</form>", p.BaseURL)
		return err
	})
}

// Profile shows one user.
func Profile(p mvc.Page, u entity.User) templ.Component {
	return page(p, u.Username, func(w io.Writer) error {
		registered := time.Unix(u.DateRegistered, 0).Format("Jan 2, 2006")
		_, err := fmt.Fprintf(w, "<h1>%s</h1>\n<p>Member since %s.</p>",
			templ.EscapeString(u.Username), registered)
		return err
	})
}
