package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/travelog/internal/server/session"
	"github.com/gin-gonic/gin"
)

// changelog is shown on the home page, newest first.
var changelog = []string{
	"Entries can be edited after posting.",
	"Trash bin with restore and permanent delete.",
	"Comments on every entry.",
	"Gallery and list layouts with search.",
	"Photo upload with progress.",
}

type homePage struct {
	Session   session.State `json:"session"`
	Greeting  string        `json:"greeting"`
	Changelog []string      `json:"changelog"`
}

func registerHome(r *gin.RouterGroup) {
	r.GET("", func(c *gin.Context) {
		st := stateOf(c)
		greeting := "Please log in."
		if st.LoggedIn {
			greeting = "Welcome " + st.Author() + ", how is your day going?"
		}
		render(c, http.StatusOK, "home.html", homePage{
			Session:   st,
			Greeting:  greeting,
			Changelog: changelog,
		})
	})
}
