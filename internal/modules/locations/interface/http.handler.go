package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"roloApp/internal/modules/locations/application/usecase"
	usertransport "roloApp/internal/modules/users/interface"
	"roloApp/internal/shared/apperrors"
	"roloApp/internal/shared/httputil"
	"roloApp/internal/shared/uploads"
)

const maxImagesPerLocation = 5

type Handler struct {
	locationUC *usecase.LocationUseCase
	stager     *uploads.Stager
}

func NewHandler(locationUC *usecase.LocationUseCase, stager *uploads.Stager) *Handler {
	return &Handler{locationUC: locationUC, stager: stager}
}

// Register mounts the location routes. Reads are public, mutations require auth.
func (h *Handler) Register(g *echo.Group, authRequired echo.MiddlewareFunc) {
	g.POST("/locations", h.create, authRequired)
	g.GET("/locations", h.list)
	g.GET("/locations/:id", h.get)
	g.PUT("/locations/:id", h.update, authRequired)
	g.DELETE("/locations/:id", h.delete, authRequired)
	g.POST("/locations/:id/comments", h.addComment, authRequired)
}

func (h *Handler) create(c echo.Context) error {
	actor, err := usertransport.CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}

	latitude, longitude, err := parseCoordinates(c)
	if err != nil {
		return httputil.Respond(err)
	}

	imagePaths, err := h.stageImages(c)
	if err != nil {
		return httputil.Respond(err)
	}
	defer h.removeStaged(imagePaths)

	input := usecase.CreateLocationInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Latitude:    latitude,
		Longitude:   longitude,
		Address:     c.FormValue("address"),
		Sensations:  splitValues(c.FormValue("sensations")),
		Smells:      splitValues(c.FormValue("smells")),
		ImagePaths:  imagePaths,
	}
	location, err := h.locationUC.Create(c.Request().Context(), actor, input)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusCreated, location)
}

func (h *Handler) list(c echo.Context) error {
	locations, err := h.locationUC.List(c.Request().Context())
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, locations)
}

func (h *Handler) get(c echo.Context) error {
	location, err := h.locationUC.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, location)
}

func (h *Handler) update(c echo.Context) error {
	actor, err := usertransport.CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}

	imagePaths, err := h.stageImages(c)
	if err != nil {
		return httputil.Respond(err)
	}
	defer h.removeStaged(imagePaths)

	input := usecase.UpdateLocationInput{
		Name:          c.FormValue("name"),
		Description:   c.FormValue("description"),
		Address:       c.FormValue("address"),
		Sensations:    splitValues(c.FormValue("sensations")),
		Smells:        splitValues(c.FormValue("smells")),
		ImagePaths:    imagePaths,
		ReplaceImages: c.FormValue("replaceImages") == "true",
	}
	location, err := h.locationUC.Update(c.Request().Context(), actor, c.Param("id"), input)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, location)
}

func (h *Handler) delete(c echo.Context) error {
	actor, err := usertransport.CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}
	if err := h.locationUC.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return httputil.Respond(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) addComment(c echo.Context) error {
	actor, err := usertransport.CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	location, err := h.locationUC.AddComment(c.Request().Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusCreated, location)
}

// stageImages stages the "images" multipart files. Requests without a
// multipart form or without image files are fine.
func (h *Handler) stageImages(c echo.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	files := form.File["images"]
	if len(files) > maxImagesPerLocation {
		return nil, apperrors.Validationf("at most %d images per location", maxImagesPerLocation)
	}
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := h.stager.Stage(fh)
		if err != nil {
			h.removeStaged(paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (h *Handler) removeStaged(paths []string) {
	for _, path := range paths {
		h.stager.Remove(path)
	}
}

func parseCoordinates(c echo.Context) (float64, float64, error) {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("latitude")), 64)
	if err != nil {
		return 0, 0, apperrors.Validationf("latitude is required")
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("longitude")), 64)
	if err != nil {
		return 0, 0, apperrors.Validationf("longitude is required")
	}
	return latitude, longitude, nil
}

func splitValues(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
