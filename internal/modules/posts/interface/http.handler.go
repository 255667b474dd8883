package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roloApp/internal/modules/posts/application/usecase"
	usertransport "roloApp/internal/modules/users/interface"
	"roloApp/internal/shared/httputil"
	"roloApp/internal/shared/uploads"
)

type Handler struct {
	postUC *usecase.PostUseCase
	stager *uploads.Stager
}

func NewHandler(postUC *usecase.PostUseCase, stager *uploads.Stager) *Handler {
	return &Handler{postUC: postUC, stager: stager}
}

// Register mounts the post routes. Reads are public, mutations require auth.
func (h *Handler) Register(g *echo.Group, authRequired echo.MiddlewareFunc) {
	g.POST("/posts", h.create, authRequired)
	g.GET("/posts", h.list)
	g.GET("/posts/:id", h.get)
	g.PUT("/posts/:id", h.update, authRequired)
	g.DELETE("/posts/:id", h.delete, authRequired)
	g.POST("/posts/:id/like", h.toggleLike, authRequired)
	g.POST("/posts/:id/comments", h.addComment, authRequired)
}

func (h *Handler) create(c echo.Context) error {
	actor, err := usertransport.CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}

	imagePath, err := h.stageOptionalImage(c)
	if err != nil {
		return httputil.Respond(err)
	}
	defer h.stager.Remove(imagePath)

	input := usecase.CreatePostInput{
		Title:      c.FormValue("title"),
		Content:    c.FormValue("content"),
		LocationID: c.FormValue("location"),
		ImagePath:  imagePath,
	}
	post, err := h.postUC.Create(c.Request().Context(), actor, input)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *Handler) list(c echo.Context) error {
	posts, err := h.postUC.List(c.Request().Context())
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *Handler) get(c echo.Context) error {
	post, err := h.postUC.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *Handler) update(c echo.Context) error {
	actor, err := usertransport.CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}

	imagePath, err := h.stageOptionalImage(c)
	if err != nil {
		return httputil.Respond(err)
	}
	defer h.stager.Remove(imagePath)

	input := usecase.UpdatePostInput{
		Title:     c.FormValue("title"),
		Content:   c.FormValue("content"),
		ImagePath: imagePath,
	}
	post, err := h.postUC.Update(c.Request().Context(), actor, c.Param("id"), input)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *Handler) delete(c echo.Context) error {
	actor, err := usertransport.CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}
	if err := h.postUC.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return httputil.Respond(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) toggleLike(c echo.Context) error {
	actor, err := usertransport.CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}
	post, err := h.postUC.ToggleLike(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, post)
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
	post, err := h.postUC.AddComment(c.Request().Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// stageOptionalImage stages the "image" form file when present. A request
// without a file is fine; a file that fails validation is not.
func (h *Handler) stageOptionalImage(c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	return h.stager.Stage(fh)
}
