// Package reporting exposes predefined SQL measures for the admin dashboard.
package reporting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// MeasureDefinition defines a reporting measure with its SQL query.
type MeasureDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SQL         string `json:"-"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
}

// PredefinedMeasures is the closed list of dashboard reports. Measures run
// verbatim; there is no user-supplied SQL anywhere in this package.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "revenue-by-day",
		Name:        "Revenue by Day",
		Description: "Collected revenue per day from paid invoices over the last 30 days",
		SQL: `SELECT issued_at::date AS day, SUM(total) AS revenue, COUNT(*) AS invoices
		      FROM invoice
		      WHERE status = 'paid' AND issued_at >= now() - interval '30 days'
		      GROUP BY issued_at::date ORDER BY day`,
	},
	{
		ID:          "invoice-status-summary",
		Name:        "Invoice Status Summary",
		Description: "Count and value of invoices grouped by lifecycle status",
		SQL: `SELECT status, COUNT(*) AS total, COALESCE(SUM(total), 0) AS amount
		      FROM invoice GROUP BY status ORDER BY total DESC`,
	},
	{
		ID:          "patients-per-doctor",
		Name:        "Patients per Doctor",
		Description: "Distinct patients seen by each doctor in completed consultations",
		SQL: `SELECT s.name AS doctor, COUNT(DISTINCT c.patient_id) AS patients
		      FROM consultation c JOIN staff s ON s.id = c.doctor_id
		      WHERE c.status = 'completed'
		      GROUP BY s.name ORDER BY patients DESC`,
	},
	{
		ID:          "appointment-volume",
		Name:        "Appointment Volume",
		Description: "Appointments grouped by status",
		SQL: `SELECT status, COUNT(*) AS total
		      FROM appointment GROUP BY status ORDER BY total DESC`,
	},
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}

// Handler serves the reporting API.
type Handler struct {
	pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool}
}

// RegisterRoutes mounts the reporting endpoints. Reports expose revenue
// figures, so only admins see them.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports", auth.RequireRole(auth.RoleAdmin))
	g.GET("/measures", h.ListMeasures)
	g.GET("/measures/:id/evaluate", h.EvaluateMeasure)
}

// ListMeasures returns the available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

// EvaluateMeasure executes a measure's SQL and returns the results.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}

	return c.JSON(http.StatusOK, MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now().UTC(),
		Results:     results,
	})
}

func (h *Handler) executeSQL(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	rows, err := h.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	results := []map[string]interface{}{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			row[string(fd.Name)] = values[i]
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
