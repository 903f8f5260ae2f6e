package ledger

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rxdesk/rxdesk/internal/platform/auth"
	"github.com/rxdesk/rxdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("doctor"))
	g.POST("/prescriptions", h.CreatePrescription)
	g.GET("/patients", h.ListPatients)
	g.GET("/patients/:id/history", h.GetPatientHistory)
}

// CreatePrescription is "Save & Print". The form needs at least a patient
// name and a diagnosis; the store itself accepts anything.
func (h *Handler) CreatePrescription(c echo.Context) error {
	var in PrescriptionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(in.PatientData.Name) == "" || strings.TrimSpace(in.Diagnosis) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient name and diagnosis are required")
	}
	rx, err := h.svc.Save(c.Request().Context(), in)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusCreated, rx)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, err := h.svc.SearchPatients(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.Page(patients, pg))
}

func (h *Handler) GetPatientHistory(c echo.Context) error {
	id, err := patientIDParam(c)
	if err != nil || id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	history, err := h.svc.PatientHistory(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, pagination.Page(history, pg))
}

// patientIDParam decodes the :id segment. The router leaves it escaped when
// the request path needed escaping, as for ids containing "/".
func patientIDParam(c echo.Context) (string, error) {
	id := c.Param("id")
	if c.Request().URL.RawPath == "" {
		return id, nil
	}
	return url.PathUnescape(id)
}

func storeError(err error) error {
	if errors.Is(err, ErrCorruptLedger) {
		return echo.NewHTTPError(http.StatusInternalServerError, "stored ledger data is unreadable").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "ledger store unavailable").SetInternal(err)
}
