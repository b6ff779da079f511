package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/mvc"
	"github.com/dmitrymomot/mvc/example/views"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/query"
)

const visitsProperty = "example.visits"

// Index serves the home page.
type Index struct{}

func (Index) Name() string { return "Index" }

func (h Index) Actions(r mvc.ActionRouter) {
	r.Action("default_index", 0, h.home)
}

func (Index) home(c mvc.Context, _ []string) error {
	visits, err := c.Settings().Int(c, visitsProperty, 0)
	if err != nil {
		return err
	}
	visits++
	if err := c.Settings().Set(c, visitsProperty, strconv.FormatInt(visits, 10)); err != nil {
		return err
	}

	// last_online is bookkeeping; it can wait until the page is sent.
	user := c.Auth().User()
	if c.Auth().IsLoggedIn() {
		err := entity.NewUsers(c.DB()).
			Update(query.Values{{Column: "last_online", Value: time.Now().Unix()}}).
			Where("id", user.ID).
			ExecuteTransaction()
		if err != nil {
			return err
		}
	}

	return c.Render(http.StatusOK, views.Home(c.Page(), user.Username, visits))
}
