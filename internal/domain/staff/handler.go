package staff

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts login outside the auth middleware.
func (h *Handler) RegisterPublicRoutes(e *echo.Echo) {
	e.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/change-password", h.ChangePassword)

	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.POST("/staff", h.CreateStaff)
	adminGroup.GET("/staff", h.ListStaff)
	adminGroup.GET("/staff/:id", h.GetStaff)
	adminGroup.POST("/staff/:id/deactivate", h.Deactivate)
	adminGroup.POST("/staff/:id/reactivate", h.Reactivate)
	adminGroup.GET("/branches", h.ListBranches)

	// Opening a branch changes the shape of the business.
	api.POST("/branches", h.CreateBranch, auth.RequireRole(auth.RoleSuperadmin))
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		// Credential failures surface as 401 here, not the 403 the kind
		// usually maps to.
		if clinicerr.IsKind(err, clinicerr.KindPermission) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(auth.StaffIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown caller")
	}
	if err := h.svc.ChangePassword(c.Request().Context(), id, in.CurrentPassword, in.NewPassword); err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateStaff(c echo.Context) error {
	var in CreateStaffInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	st, err := h.svc.CreateStaff(c.Request().Context(), in)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) GetStaff(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	st, err := h.svc.GetStaff(c.Request().Context(), id)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) ListStaff(c echo.Context) error {
	params := pagination.FromContext(c)
	list, total, err := h.svc.ListStaff(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	if list == nil {
		list = []*Staff{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, params))
}

func (h *Handler) Deactivate(c echo.Context) error {
	return h.setActive(c, h.svc.Deactivate)
}

func (h *Handler) Reactivate(c echo.Context) error {
	return h.setActive(c, h.svc.Reactivate)
}

func (h *Handler) setActive(c echo.Context, fn func(ctx context.Context, id uuid.UUID) error) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := fn(c.Request().Context(), id); err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateBranch(c echo.Context) error {
	var in CreateBranchInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.CreateBranch(c.Request().Context(), in)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) ListBranches(c echo.Context) error {
	list, err := h.svc.ListBranches(c.Request().Context())
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	if list == nil {
		list = []*Branch{}
	}
	return c.JSON(http.StatusOK, list)
}
