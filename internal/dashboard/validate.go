package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"forecast-dashboard/internal/model"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ForecastInput is the body of POST /api/forecast.
type ForecastInput struct {
	Symbol  string `json:"symbol" validate:"required,max=16"`
	Horizon int    `json:"horizon" default:"24" validate:"min=1,max=720"`
	ModelID string `json:"model_id" default:"ensemble" validate:"required"`
}

// TradeInput is the body of POST /api/portfolio/trade.
type TradeInput struct {
	UserID   string `json:"user_id" default:"default" validate:"required"`
	Symbol   string `json:"symbol" validate:"required,max=16"`
	Action   string `json:"action" validate:"required,oneof=buy sell"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CreatePortfolioInput is the body of POST /api/portfolio/create.
type CreatePortfolioInput struct {
	UserID         string  `json:"user_id" default:"default" validate:"required"`
	InitialCapital float64 `json:"initial_capital" default:"10000" validate:"gt=0"`
}

// RetrainInput is the body of the model maintenance endpoints. The default
// model type differs per endpoint, so it is filled in by the handler.
type RetrainInput struct {
	Symbol    string `json:"symbol" validate:"required,max=16"`
	ModelType string `json:"model_type" validate:"omitempty,oneof=arima lstm ensemble adaptive rolling_window sliding_context"`
}

func (in ForecastInput) Request() model.ForecastRequest {
	return model.ForecastRequest{Symbol: strings.ToUpper(in.Symbol), Horizon: in.Horizon, ModelID: in.ModelID}
}

func (in TradeInput) Request() model.TradeRequest {
	return model.TradeRequest{UserID: in.UserID, Symbol: strings.ToUpper(in.Symbol), Action: in.Action, Quantity: in.Quantity}
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is returned by decodeAndValidate when the body is rejected.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// decodeAndValidate reads a JSON body into dst, applies `default` tags and
// runs `validate` tags. An empty body is treated as {}.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return ValidationErrors{{Code: "ERR_BODY", Message: err.Error()}}
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, dst); err != nil {
			return ValidationErrors{{Code: "ERR_JSON", Message: "invalid JSON body: " + err.Error()}}
		}
	}

	if err := defaults.Set(dst); err != nil {
		return ValidationErrors{{Code: "ERR_DEFAULTS", Message: err.Error()}}
	}

	if err := validate.StructCtx(r.Context(), dst); err != nil {
		return translateValidation(err)
	}
	return nil
}

func translateValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
