package controller

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/handler"
	"github.com/unclebandit/aisdr-backend/internal/service"
)

const maxUploadBytes = 32 << 20

type ImportController struct {
	ImportService *service.ImportService
	Logger        *zap.Logger
}

// Upload expects multipart form field "file". "save=true" stores the rows as a
// new campaign named by "name".
func (c *ImportController) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		handler.WriteError(w, c.Logger, appErrors.NewValidation("file", "expected a multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			handler.WriteError(w, c.Logger, appErrors.NewValidation("file", "No file uploaded"))
			return
		}
		handler.WriteError(w, c.Logger, appErrors.NewValidation("file", err.Error()))
		return
	}
	defer file.Close()

	var save bool
	if v := r.FormValue("save"); v != "" {
		save, err = strconv.ParseBool(v)
		if err != nil {
			handler.WriteError(w, c.Logger, appErrors.NewValidation("save", "must be a boolean"))
			return
		}
	}

	result, err := c.ImportService.Import(r.Context(), header.Filename, file, service.ImportOptions{
		Save: save,
		Name: r.FormValue("name"),
	})
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	status := http.StatusOK
	if result.Campaign != nil {
		status = http.StatusCreated
	}
	handler.WriteJSON(w, status, result)
}
