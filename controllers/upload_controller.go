package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intrafeed/intrafeed/services"
	"github.com/intrafeed/intrafeed/utils"
)

// UploadController receives attachment files before a post references them.
type UploadController struct {
	uploads *services.UploadService
}

func NewUploadController(uploads *services.UploadService) *UploadController {
	return &UploadController{uploads: uploads}
}

// Upload stores the multipart "file" field and returns its public URL.
func (u *UploadController) Upload(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	// Multipart framing overhead on top of the file itself.
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, u.uploads.MaxBytes()+1<<20)

	fh, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "file field is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "cannot read uploaded file")
		return
	}
	defer f.Close()

	rec, err := u.uploads.Save(ctx.Request.Context(), user, services.UploadInput{
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		utils.Fail(ctx, err, 50030)
		return
	}
	utils.Created(ctx, gin.H{
		"url":           rec.URL,
		"original_name": rec.OriginalName,
		"kind":          rec.Kind,
		"size":          rec.Size,
		"content_type":  rec.ContentType,
	})
}
