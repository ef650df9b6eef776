package consultation

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleReceptionist))
	readGroup.GET("/consultations/:id", h.Get)
	readGroup.GET("/doctors/:doctorId/consultations", h.ListByDoctor)
	readGroup.GET("/patients/:id/consultations", h.ListByPatient)

	// Reception checks patients in; doctors run the visit.
	api.POST("/consultations", h.Create, auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))

	doctorGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	doctorGroup.POST("/consultations/:id/start", h.Start)
	doctorGroup.POST("/consultations/:id/complete", h.Complete)
	doctorGroup.PUT("/consultations/:id/notes", h.UpdateNotes)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cons, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, cons)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cons, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cons)
}

func (h *Handler) Start(c echo.Context) error {
	return h.transition(c, h.svc.Start)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.transition(c, h.svc.Complete)
}

func (h *Handler) transition(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*Consultation, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cons, err := fn(c.Request().Context(), id)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cons)
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in NotesInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cons, err := h.svc.UpdateNotes(c.Request().Context(), id, in)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cons)
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	params := pagination.FromContext(c)
	list, total, err := h.svc.ListByDoctor(c.Request().Context(), doctorID, Status(c.QueryParam("status")), params.Limit, params.Offset)
	if err != nil {
		return clinicerr.ToHTTP(err)
	}
	if list == nil {
		list = []*Consultation{}
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
		list = []*Consultation{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, params))
}
