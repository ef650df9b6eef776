package billing

import (
	"net/http"
	"strings"

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	billingGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
	billingGroup.POST("/invoices", h.Create)
	billingGroup.PUT("/invoices/:id", h.Update)
	billingGroup.POST("/invoices/:id/issue", h.Issue)
	billingGroup.POST("/invoices/:id/pay", h.Pay)

	// The service re-checks the role; the route guard is the first gate.
	api.POST("/invoices/:id/void", h.Void, auth.RequireRole(auth.RoleAdmin))

	readGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleReceptionist))
	readGroup.GET("/invoices", h.List)
	readGroup.GET("/invoices/:id", h.Get)
	readGroup.GET("/invoices/:id/pdf", h.PDF)
	readGroup.GET("/patients/:id/invoices", h.ListByPatient)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.svc.CreateDraft(c.Request().Context(), in)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.svc.UpdateDraft(c.Request().Context(), id, in)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) Issue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in IssueInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.svc.Issue(c.Request().Context(), id, in)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) Pay(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.Pay(c.Request().Context(), id)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) Void(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.Void(c.Request().Context(), id)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, inv)
}

// Get accepts either the row UUID or the printed invoice number.
func (h *Handler) Get(c echo.Context) error {
	raw := c.Param("id")
	if id, err := uuid.Parse(raw); err == nil {
		inv, err := h.svc.Get(c.Request().Context(), id)
		if err != nil {
			return clinicerr.ToHTTP(err)
		}
		return c.JSON(http.StatusOK, inv)
	}
	if strings.HasPrefix(raw, "INV") {
		inv, err := h.svc.repo.GetByInvoiceNumber(c.Request().Context(), raw)
		if err != nil {
			return clinicerr.ToHTTP(err)
		}
		return c.JSON(http.StatusOK, inv)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
}

func (h *Handler) PDF(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pdf, filename, err := h.svc.RenderPDF(c.Request().Context(), id)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) List(c echo.Context) error {
	params := pagination.FromContext(c)
	list, total, err := h.svc.List(c.Request().Context(), Status(c.QueryParam("status")), params.Limit, params.Offset)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	if list == nil {
		list = []*Invoice{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, params))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	params := pagination.FromContext(c)
	list, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, params.Limit, params.Offset)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	if list == nil {
		list = []*Invoice{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, params))
}
