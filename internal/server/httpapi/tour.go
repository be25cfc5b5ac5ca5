package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/blobstore"
	"github.com/dmitrijs2005/travelog/internal/server/journal"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type tourResource struct {
	entries       EntryService
	logger        logging.Logger
	maxUploadSize int64
}

func registerTour(r *gin.RouterGroup, entries EntryService, logger logging.Logger, maxUploadSize int64) {
	rs := &tourResource{entries: entries, logger: logger, maxUploadSize: maxUploadSize}
	r.POST("tour", rs.Create)
}

type tourReq struct {
	Location string `form:"location"`
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Comment  string `form:"comment"`
}

func (rs *tourResource) Create(c *gin.Context) {
	ctx := c.Request.Context()
	form := journal.NewCreationForm(rs.entries, stateOf(c), rs.logger)
	if !form.Enabled() {
		serErr(c, rs.logger, common.ErrNotAuthenticated)
		return
	}
	if rs.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, rs.maxUploadSize)
	}

	var req tourReq
	if !bind(c, &req, binding.FormMultipart) {
		return
	}
	form.Location, form.Date, form.Comment = req.Location, req.Date, req.Comment

	fh, err := c.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		serErr(c, rs.logger, common.ErrPhotoRequired)
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"notice": err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	defer f.Close()

	form.Photo = &blobstore.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
	form.OnProgress(func(sent, total int64) {
		rs.logger.Debug(ctx, "photo upload progress", "sent", sent, "total", total)
	})

	entry, err := form.Submit(ctx)
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"notice": "Your travel memory has been saved.",
		"entry":  entry,
	})
}
