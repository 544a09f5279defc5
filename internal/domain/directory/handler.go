package directory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docease/docease/internal/platform/auth"
	"github.com/docease/docease/pkg/apperror"
)

// Handler exposes the doctor directory over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the directory routes. Listing and detail are
// public; profile creation and updates require a doctor token.
func (h *Handler) RegisterRoutes(api *echo.Group, authMW echo.MiddlewareFunc) {
	g := api.Group("/doctors")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, authMW, auth.RequireRole("doctor"))
	g.PUT("/:id", h.Update, authMW, auth.RequireRole("doctor"))
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), c.QueryParam("specialization"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Create(c echo.Context) error {
	var in ProfileInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	d, err := h.svc.CreateProfile(c.Request().Context(), userID, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Doctor profile created successfully",
		"doctor":  d,
	})
}

// Update always targets the calling doctor's own profile. The path id
// is accepted for URL shape compatibility but the token decides whose
// profile changes.
func (h *Handler) Update(c echo.Context) error {
	var in ProfileInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	d, err := h.svc.UpdateOwn(c.Request().Context(), userID, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Doctor profile updated successfully",
		"doctor":  d,
	})
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.Message(err))
}
