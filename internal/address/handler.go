package address

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
)

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

type validateResponse struct {
	Valid    bool              `json:"valid"`
	Fields   map[string]string `json:"fields"`
	Progress int               `json:"progress"`
	Complete bool              `json:"complete"`
}

// HandleValidate checks a draft address. With ?field=<name> only that field
// is checked, which is what the form does on blur; progress always covers
// the whole draft.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var draft domain.ShippingAddress
	if err := httpx.DecodeJSON(w, r, &draft); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	resp := validateResponse{
		Fields:   map[string]string{},
		Progress: Progress(draft),
		Complete: Complete(draft),
	}

	if field := r.URL.Query().Get("field"); field != "" {
		err := ValidateField(field, fieldValues(draft)[field])
		if errors.Is(err, ErrUnknownField) {
			httpx.WriteError(w, http.StatusBadRequest, "unknown field "+field, h.logger)
			return
		}
		if err != nil {
			resp.Fields[field] = FieldError{Field: field, Err: err}.Error()
		}
	} else {
		for _, fe := range ValidateAll(draft) {
			resp.Fields[fe.Field] = fe.Error()
		}
	}
	resp.Valid = len(resp.Fields) == 0

	httpx.WriteJSON(w, http.StatusOK, resp, h.logger)
}

func (h *Handler) HandleCountries(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, Countries(), h.logger)
}
