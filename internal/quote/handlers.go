package quote

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/parking-fee/internal/common"
	"github.com/noah-isme/parking-fee/internal/format"
	"github.com/noah-isme/parking-fee/internal/tariff"
)

// Handler exposes the form pages, the JSON API and the admin reload endpoint.
type Handler struct {
	service    *Service
	adminToken string
	logger     zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	// AdminToken guards POST /admin/facilities/reload. Empty disables the endpoint.
	AdminToken string
	Logger     zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, adminToken: cfg.AdminToken, logger: cfg.Logger}
}

type createRequest struct {
	Facility string `json:"facility" validate:"required"`
	Entry    string `json:"entry" validate:"required"`
	Exit     string `json:"exit,omitempty"`
}

// Response is the JSON representation of a quote.
type Response struct {
	ID                string           `json:"id"`
	Facility          string           `json:"facility"`
	Fee               string           `json:"fee"`
	FeeFormatted      string           `json:"fee_formatted"`
	DurationMinutes   float64          `json:"duration_minutes"`
	DurationFormatted string           `json:"duration_formatted"`
	Entry             string           `json:"entry"`
	Exit              string           `json:"exit"`
	Breakdown         tariff.Breakdown `json:"breakdown"`
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

// Facilities handles GET /api/v1/facilities.
func (h *Handler) Facilities(w http.ResponseWriter, _ *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	common.JSONData(w, http.StatusOK, h.service.Facilities())
}

// Create handles POST /api/v1/quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req createRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.badRequest(w, "body", "invalid JSON body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.WriteError(w, validationError(err))
		return
	}

	q, err := h.service.Quote(r.Context(), Request{Facility: req.Facility, Entry: req.Entry, Exit: req.Exit})
	if err != nil {
		common.WriteError(w, AppError(err))
		return
	}
	common.JSONData(w, http.StatusOK, h.toResponse(q))
}

// Reload handles POST /admin/facilities/reload.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.service == nil || h.adminToken == "" {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "not found", nil)
		return
	}
	token, ok := common.BearerToken(r)
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
		w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin token", nil)
		return
	}
	res, err := h.service.ReloadFacilities(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "RELOAD_FAILED", "facility reload failed; previous table kept",
			map[string]string{"error": err.Error()})
		return
	}
	common.JSONData(w, http.StatusOK, res)
}

func (h *Handler) toResponse(q Quote) Response {
	return Response{
		ID:                q.ID.String(),
		Facility:          q.Facility,
		Fee:               q.Fee.StringFixed(2),
		FeeFormatted:      format.Money(q.Fee),
		DurationMinutes:   q.DurationMinutes,
		DurationFormatted: format.Duration(q.DurationMinutes),
		Entry:             q.Entry.Format(h.service.Layout()),
		Exit:              q.Exit.Format(h.service.Layout()),
		Breakdown:         q.Breakdown,
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, field, msg string, err error) {
	details := map[string]any{"field": field}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		details["offset"] = syntaxErr.Offset
	}
	common.WriteError(w, common.NewAppError("INVALID_REQUEST", msg, http.StatusBadRequest, err).WithDetails(details))
}

func validationError(err error) *common.AppError {
	details := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return common.NewAppError("VALIDATION_ERROR", "invalid quote request", http.StatusBadRequest, err).WithDetails(details)
}
