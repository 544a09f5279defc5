package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docease/docease/internal/platform/auth"
	"github.com/docease/docease/pkg/apperror"
)

// DoctorRegistrar creates a practitioner profile for a freshly registered
// doctor identity. Implemented by an adapter over the directory service so
// the two domains stay decoupled.
type DoctorRegistrar interface {
	RegisterDoctor(ctx context.Context, userID uuid.UUID, specialization string, experience int, education string, consultationFee float64) error
}

type Handler struct {
	svc       *Service
	tokens    *auth.TokenManager
	registrar DoctorRegistrar
}

func NewHandler(svc *Service, tokens *auth.TokenManager, registrar DoctorRegistrar) *Handler {
	return &Handler{svc: svc, tokens: tokens, registrar: registrar}
}

func (h *Handler) RegisterRoutes(api *echo.Group, authMW echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, authMW)
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`

	// Practitioner fields, used when role is doctor.
	Specialization  string  `json:"specialization"`
	Experience      int     `json:"experience"`
	Education       string  `json:"education"`
	ConsultationFee float64 `json:"consultation_fee"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    Profile `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
		}
		in.DateOfBirth = &dob
	}
	if req.Gender != "" {
		in.Gender = &req.Gender
	}

	ctx := c.Request().Context()
	user, err := h.svc.Register(ctx, in)
	if err != nil {
		return httpError(err)
	}

	if user.Role == RoleDoctor && h.registrar != nil {
		if err := h.registrar.RegisterDoctor(ctx, user.ID, req.Specialization, req.Experience, req.Education, req.ConsultationFee); err != nil {
			return httpError(err)
		}
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return httpError(apperror.Internal("issue token", err))
	}

	return c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user.Profile(),
	})
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return httpError(apperror.Internal("issue token", err))
	}

	return c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.Profile(),
	})
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]Profile{"user": user.Profile()})
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperror.HTTPStatus(err), apperror.Message(err))
}
