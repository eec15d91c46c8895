package quote

import (
	"net/http"

	"github.com/noah-isme/parking-fee/internal/common"
	"github.com/noah-isme/parking-fee/internal/tariff"
)

// User-facing messages, in the language of the form.
const (
	MsgInvalidTimestamp = "Formato de data/hora inválido. Use AAAA-MM-DDTHH:MM (do campo datetime-local)."
	MsgNegativeDuration = "A hora de saída não pode ser anterior à hora de entrada."
	MsgUnknownFacility  = "Erro: Pátio selecionado inválido ou sem regras na configuração."
	MsgUnexpected       = "Ocorreu um erro inesperado durante o cálculo."
)

// Message returns the user-facing text for err. Internal failures get a
// generic message so no detail leaks to the page.
func Message(err error) string {
	switch tariff.KindOf(err) {
	case tariff.KindNone:
		return ""
	case tariff.KindInvalidTimestamp:
		return MsgInvalidTimestamp
	case tariff.KindNegativeDuration:
		return MsgNegativeDuration
	case tariff.KindUnknownFacility:
		return MsgUnknownFacility
	default:
		return MsgUnexpected
	}
}

// AppError maps a quote failure onto the API error envelope.
func AppError(err error) *common.AppError {
	switch tariff.KindOf(err) {
	case tariff.KindNone:
		return nil
	case tariff.KindInvalidTimestamp:
		return common.NewAppError("INVALID_TIMESTAMP", MsgInvalidTimestamp, http.StatusBadRequest, err)
	case tariff.KindNegativeDuration:
		return common.NewAppError("NEGATIVE_DURATION", MsgNegativeDuration, http.StatusBadRequest, err)
	case tariff.KindUnknownFacility:
		return common.NewAppError("UNKNOWN_FACILITY", MsgUnknownFacility, http.StatusNotFound, err)
	default:
		return common.NewAppError("INTERNAL", MsgUnexpected, http.StatusInternalServerError, err)
	}
}
