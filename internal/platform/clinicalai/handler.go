package clinicalai

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rxdesk/rxdesk/internal/platform/auth"
)

// MaxUploadBytes caps a single report or scan.
const MaxUploadBytes = 10 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/ai", auth.RequireRole("doctor"))
	g.POST("/validate", h.Validate)
	g.POST("/blood-report", h.BloodReport)
	g.POST("/mri", h.MRI)
}

// Validate and the two analysis endpoints answer 200 with a Result whether
// the model succeeded or not; only malformed requests are HTTP errors.
func (h *Handler) Validate(c echo.Context) error {
	var in ValidationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	res := h.svc.ValidatePrescription(ctx, in)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) BloodReport(c echo.Context) error {
	file, err := readUpload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	res := h.svc.AnalyzeBloodReport(ctx, file)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) MRI(c echo.Context) error {
	file, err := readUpload(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	res := h.svc.AnalyzeMRI(ctx, file)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.JSON(http.StatusOK, res)
}

// readUpload reads the multipart "file" field. Only images and PDFs are
// accepted; a missing or generic content type is sniffed from the bytes.
func readUpload(c echo.Context) (Attachment, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return Attachment{}, echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}
	if fh.Size > MaxUploadBytes {
		return Attachment{}, tooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		return Attachment{}, echo.NewHTTPError(http.StatusBadRequest, "cannot read upload").SetInternal(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return Attachment{}, echo.NewHTTPError(http.StatusBadRequest, "cannot read upload").SetInternal(err)
	}
	if len(data) > MaxUploadBytes {
		return Attachment{}, tooLarge()
	}
	if len(data) == 0 {
		return Attachment{}, echo.NewHTTPError(http.StatusBadRequest, "uploaded file is empty")
	}

	mt := mediaType(fh.Header.Get(echo.HeaderContentType))
	if mt == "" || mt == "application/octet-stream" {
		mt = mediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mt, "image/") && mt != "application/pdf" {
		return Attachment{}, echo.NewHTTPError(http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported file type %q: upload an image or a PDF", mt))
	}

	return Attachment{Name: fh.Filename, MIMEType: mt, Data: data}, nil
}

func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

func tooLarge() error {
	return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("file exceeds %d MB", MaxUploadBytes>>20))
}
