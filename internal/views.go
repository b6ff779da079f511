package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mvc/pkg/sanitizer"
)

// Page carries what the layout needs besides the body.
type Page struct {
	SiteTitle string
	AssetsURL string
	BaseURL   string
}

// InfoView renders a titled message: access denials, malformed requests,
// HTTP errors and messages from actions.
type InfoView func(p Page, title, message string) templ.Component

// ErrorView renders the internal error page. detail is empty in release mode.
type ErrorView func(p Page, detail string) templ.Component

// DefaultInfoView is a minimal HTML page. The message keeps basic formatting;
// the title is reduced to text.
func DefaultInfoView(p Page, title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(w, p, sanitizer.Text(title),
			"<h1>"+sanitizer.Text(title)+"</h1>\n<div class=\"message\">"+sanitizer.Message(message)+"</div>")
	})
}

// DefaultErrorView shows a generic message, followed by the error detail
// when there is one.
func DefaultErrorView(p Page, detail string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := "<h1>Internal Server Error</h1>\n<p>The server encountered an error while processing your request.</p>"
		if detail != "" {
			body += "\n<pre>" + templ.EscapeString(detail) + "</pre>"
		}
		return layout(w, p, http.StatusText(http.StatusInternalServerError), body)
	})
}

func layout(w io.Writer, p Page, title, body string) error {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	if p.SiteTitle != "" {
		sb.WriteString(templ.EscapeString(p.SiteTitle))
		sb.WriteString(" - ")
	}
	sb.WriteString(title)
	sb.WriteString("</title>\n")
	if p.AssetsURL != "" {
		fmt.Fprintf(&sb, "<link rel=\"stylesheet\" href=\"%s\">\n", templ.EscapeString(strings.TrimSuffix(p.AssetsURL, "/")+"/css/main.css"))
	}
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("\n</body>\n</html>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
