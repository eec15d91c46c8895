package quote

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/noah-isme/parking-fee/internal/format"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type pageData struct {
	Patios    []string
	Selected  string
	Entrada   string
	Calculado bool
	Tempo     string
	Valor     string
}

// Index handles GET /, rendering the form with the sorted facility list.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, pageData{Patios: h.service.Facilities()})
}

// Calculate handles POST /calcular. The exit time is always now; failures
// render their message in place of the duration and a zero value.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}
	data := pageData{
		Patios:    h.service.Facilities(),
		Selected:  r.PostFormValue("patio"),
		Entrada:   r.PostFormValue("hora_entrada"),
		Calculado: true,
	}

	q, err := h.service.Quote(r.Context(), Request{Facility: data.Selected, Entry: data.Entrada})
	if err != nil {
		data.Tempo = Message(err)
		data.Valor = format.ZeroMoney
	} else {
		data.Tempo = format.Duration(q.DurationMinutes)
		data.Valor = format.Money(q.Fee)
	}
	h.render(w, data)
}

func (h *Handler) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error().Err(err).Msg("render form page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
