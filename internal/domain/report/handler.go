package report

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medlens/medlens/pkg/pagination"
)

// Handler provides HTTP handlers for the report domain.
type Handler struct {
	svc *Service
}

// NewHandler creates a new report domain handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all report domain routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reports/analyze", h.AnalyzeReport)
	api.GET("/reports/:userID/latest", h.LatestReport)
	api.GET("/reports/:userID/history", h.History)
}

type analyzeRequest struct {
	UserID  string          `json:"user_id"`
	Text    string          `json:"text"`
	Patient *PatientDetails `json:"patient,omitempty"`
}

// AnalyzeReport accepts a report as JSON {user_id, text, patient} or as a
// multipart form with fields user_id, text, patient (JSON) and an image file
// part. It runs the full pipeline and returns the persisted report.
func (h *Handler) AnalyzeReport(c echo.Context) error {
	userID, in, err := bindAnalyzeRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rep, err := h.svc.ProduceReport(c.Request().Context(), userID, in)
	if err != nil {
		var exErr *ExtractionError
		switch {
		case errors.Is(err, ErrInvalidInput):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.As(err, &exErr):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *Handler) LatestReport(c echo.Context) error {
	rep, err := h.svc.Latest(c.Request().Context(), c.Param("userID"))
	if errors.Is(err, ErrNoReports) {
		return echo.NewHTTPError(http.StatusNotFound, ErrNoReports.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) History(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.History(c.Request().Context(), c.Param("userID"), pg.Limit, pg.Offset)
	if errors.Is(err, ErrNoReports) {
		return echo.NewHTTPError(http.StatusNotFound, ErrNoReports.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func bindAnalyzeRequest(c echo.Context) (string, Input, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		return bindMultipart(c)
	}

	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return "", Input{}, err
	}
	return req.UserID, Input{Text: req.Text, Patient: req.Patient}, nil
}

func bindMultipart(c echo.Context) (string, Input, error) {
	in := Input{Text: c.FormValue("text")}
	userID := c.FormValue("user_id")

	if raw := c.FormValue("patient"); raw != "" {
		var pd PatientDetails
		if err := json.Unmarshal([]byte(raw), &pd); err != nil {
			return "", Input{}, errors.New("patient field is not valid JSON")
		}
		in.Patient = &pd
	}

	fh, err := c.FormFile("image")
	if err != nil {
		// No image part; text alone may still carry the report.
		return userID, in, nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", Input{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", Input{}, err
	}
	if len(data) == 0 {
		return "", Input{}, ErrInvalidInput
	}
	in.Image = data
	in.ImageMIME = fh.Header.Get("Content-Type")
	return userID, in, nil
}
