package httpapi

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// wantsHTML reports whether the client prefers an HTML page over JSON.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}

// render answers with the named template for browsers and JSON otherwise.
func render(c *gin.Context, status int, name string, data any) {
	if name != "" && wantsHTML(c.Request) {
		c.HTML(status, name, data)
		return
	}
	c.JSON(status, data)
}

// confirmed reads the confirm=true query or form value.
func confirmed(c *gin.Context) bool {
	if v, ok := c.GetQuery("confirm"); ok {
		return v == "true"
	}
	if c.Request.Method != http.MethodDelete {
		return c.PostForm("confirm") == "true"
	}

	// net/http leaves DELETE bodies unparsed.
	if c.ContentType() != binding.MIMEPOSTForm || c.Request.Body == nil {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		return false
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return false
	}
	return values.Get("confirm") == "true"
}
