package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/journal"
	"github.com/gin-gonic/gin"
)

type editResource struct {
	entries EntryService
	logger  logging.Logger
}

func registerEdit(r *gin.RouterGroup, entries EntryService, logger logging.Logger) {
	rs := &editResource{entries: entries, logger: logger}
	r.GET("editTrip/:id", rs.Load)
	r.PUT("editTrip/:id", rs.Save)
}

type editView struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Comment  string `json:"comment"`
	PhotoURL string `json:"photoURL"`
}

func viewOf(f *journal.EditForm) editView {
	return editView{ID: f.ID, Location: f.Location, Date: f.Date, Comment: f.Comment, PhotoURL: f.PhotoURL}
}

func (rs *editResource) Load(c *gin.Context) {
	form := journal.NewEditForm(rs.entries, stateOf(c), rs.logger)
	if _, err := form.Load(c.Request.Context(), c.Param("id")); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(form))
}

type editReq struct {
	Location string `json:"location" form:"location"`
	Date     string `json:"date" form:"date" binding:"omitempty,datetime=2006-01-02"`
	Comment  string `json:"comment" form:"comment"`
}

func (rs *editResource) Save(c *gin.Context) {
	var req editReq
	if !bindAny(c, &req) {
		return
	}
	ctx := c.Request.Context()
	st := stateOf(c)
	if err := st.RequireLogin(); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	form := journal.NewEditForm(rs.entries, st, rs.logger)
	if _, err := form.Load(ctx, c.Param("id")); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	form.Location, form.Date, form.Comment = req.Location, req.Date, req.Comment
	if err := form.Submit(ctx); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": "Entry updated.", "entry": viewOf(form)})
}
