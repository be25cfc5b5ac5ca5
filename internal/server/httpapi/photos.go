package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/journal"
	"github.com/dmitrijs2005/travelog/internal/server/models"
	"github.com/dmitrijs2005/travelog/internal/server/session"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type photosResource struct {
	entries EntryService
	logger  logging.Logger
}

func registerPhotos(r *gin.RouterGroup, entries EntryService, logger logging.Logger) {
	rs := &photosResource{entries: entries, logger: logger}
	r.GET("photos", rs.List)
	r.GET("photos/orphans", rs.Orphans)
	r.GET("photos/:id", rs.Open)
	r.POST("photos/:id/comments", rs.AddComment)
	r.POST("photos/:id/trash", rs.SoftDelete)
	r.POST("photos/:id/restore", rs.Restore)
	r.DELETE("photos/:id", rs.PermanentlyDelete)
}

type listQuery struct {
	Trash bool   `form:"trash"`
	Q     string `form:"q"`
	View  string `form:"view" binding:"omitempty,oneof=gallery list"`
	Sort  string `form:"sort" binding:"omitempty,oneof=date"`
}

type listPage struct {
	Session   session.State    `json:"session"`
	Entries   []*models.Entry  `json:"entries"`
	Trash     bool             `json:"trash"`
	Query     string           `json:"q"`
	View      journal.ViewMode `json:"view"`
	NoResults bool             `json:"noResults"`
	Active    int              `json:"activeCount"`
	Trashed   int              `json:"trashCount"`
}

func pageOf(lc *journal.ListController, st session.State) listPage {
	return listPage{
		Session:   st,
		Entries:   lc.Visible(),
		Trash:     lc.ShowingTrash(),
		Query:     lc.SearchTerm(),
		View:      lc.ViewMode(),
		NoResults: lc.NoResults(),
		Active:    len(lc.Active()),
		Trashed:   len(lc.Trash()),
	}
}

func (rs *photosResource) List(c *gin.Context) {
	var q listQuery
	if !bind(c, &q, binding.Query) {
		return
	}
	st := stateOf(c)
	if q.Trash && !st.LoggedIn {
		serErr(c, rs.logger, common.ErrNotAuthenticated)
		return
	}
	lc, err := journal.NewListController(c.Request.Context(), rs.entries, st, rs.logger)
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	lc.ShowTrash(q.Trash)
	lc.SetSearchTerm(q.Q)
	lc.SetViewMode(journal.ParseViewMode(q.View))
	lc.SortByDate(q.Sort == "date")

	render(c, http.StatusOK, "photos.html", pageOf(lc, st))
}

func (rs *photosResource) Open(c *gin.Context) {
	ctx := c.Request.Context()
	e, err := rs.entries.Get(ctx, c.Param("id"))
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	ov := journal.NewOverlay(rs.entries, nil, stateOf(c), rs.logger)
	ov.Open(e)
	c.JSON(http.StatusOK, ov.Entry())
}

type commentReq struct {
	Text string `json:"text" form:"text"`
}

type commentResp struct {
	Notice string        `json:"notice"`
	Entry  *models.Entry `json:"entry"`
	listPage
}

// AddComment appends to the entry's thread and answers with the entry and
// the reloaded list.
func (rs *photosResource) AddComment(c *gin.Context) {
	var req commentReq
	if !bindAny(c, &req) {
		return
	}
	ctx := c.Request.Context()
	st := stateOf(c)
	e, err := rs.entries.Get(ctx, c.Param("id"))
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	lc, err := journal.NewListController(ctx, rs.entries, st, rs.logger)
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	ov := journal.NewOverlay(rs.entries, lc, st, rs.logger)
	ov.Open(e)
	ov.SetInput(req.Text)
	if err := ov.AddComment(ctx); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	c.JSON(http.StatusCreated, commentResp{Notice: "Comment added.", Entry: ov.Entry(), listPage: pageOf(lc, st)})
}

type mutationResp struct {
	Notice string `json:"notice"`
	listPage
}

// mutate runs op on a freshly loaded list and answers with the reloaded
// partitions.
func (rs *photosResource) mutate(c *gin.Context, showTrash bool, msg string,
	op func(lc *journal.ListController, conf journal.Confirmer) error) {
	st := stateOf(c)
	lc, err := journal.NewListController(c.Request.Context(), rs.entries, st, rs.logger)
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	if err := op(lc, journal.Confirmed(confirmed(c))); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	lc.ShowTrash(showTrash)
	c.JSON(http.StatusOK, mutationResp{Notice: msg, listPage: pageOf(lc, st)})
}

func (rs *photosResource) SoftDelete(c *gin.Context) {
	id := c.Param("id")
	rs.mutate(c, false, "Moved to the trash.", func(lc *journal.ListController, conf journal.Confirmer) error {
		return lc.SoftDelete(c.Request.Context(), id, conf)
	})
}

func (rs *photosResource) Restore(c *gin.Context) {
	id := c.Param("id")
	rs.mutate(c, true, "Entry restored.", func(lc *journal.ListController, conf journal.Confirmer) error {
		return lc.Restore(c.Request.Context(), id, conf)
	})
}

func (rs *photosResource) PermanentlyDelete(c *gin.Context) {
	id := c.Param("id")
	rs.mutate(c, true, "The entry was deleted.", func(lc *journal.ListController, conf journal.Confirmer) error {
		e := lc.Find(id)
		if e == nil {
			return common.ErrorNotFound
		}
		return lc.PermanentlyDelete(c.Request.Context(), id, e.PhotoURL, conf)
	})
}

func (rs *photosResource) Orphans(c *gin.Context) {
	if err := stateOf(c).RequireLogin(); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	files, err := rs.entries.Orphans(c.Request.Context())
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}
