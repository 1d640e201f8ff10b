package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"forecast-dashboard/internal/api"
	"forecast-dashboard/internal/model"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := s.svc.Instruments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, instruments)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.svc.Models(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models)
}

// handleChart selects the symbol and returns its chart. Query parameters:
// model, horizon, and forecast=1 to generate a new forecast.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel := s.store.Selection()
	sel.Symbol = normalizeSymbol(mux.Vars(r)["symbol"])

	q := r.URL.Query()
	if m := q.Get("model"); m != "" {
		sel.ModelID = m
	}
	if h := q.Get("horizon"); h != "" {
		horizon, err := strconv.Atoi(h)
		if err != nil || horizon < 1 || horizon > 720 {
			writeError(w, ValidationErrors{{Code: "ERR_HORIZON", Field: "horizon", Message: "horizon must be between 1 and 720"}})
			return
		}
		sel.Horizon = horizon
	}
	generate := q.Get("forecast") == "1" || q.Get("forecast") == "true"

	req := ChartRequest{Selection: sel, Generate: generate}
	if prev, ok := s.store.Chart(); ok && !generate && prev.Selection.Key(ViewChart) == sel.Key(ViewChart) {
		req.Forecasts = prev.Forecasts
	}

	s.store.Select(sel)
	v, _, err := s.RefreshChart(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if generate {
		s.refresher.ScheduleRecheck()
	}
	writeJSON(w, http.StatusOK, v)
}

// handleForecast generates a forecast for the posted selection and schedules
// a re-check so prediction errors recorded by the service show up.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var in ForecastInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, err)
		return
	}

	fr := in.Request()
	sel := s.store.Selection()
	sel.Symbol, sel.ModelID, sel.Horizon = fr.Symbol, fr.ModelID, fr.Horizon
	s.store.Select(sel)

	v, _, err := s.RefreshChart(r.Context(), ChartRequest{Selection: sel, Generate: true})
	if err != nil {
		writeError(w, err)
		return
	}
	s.refresher.ScheduleRecheck()

	log.Info().
		Str("symbol", sel.Symbol).
		Str("model", sel.ModelID).
		Int("horizon", sel.Horizon).
		Int("points", len(v.Forecasts)).
		Bool("demo", v.Demo).
		Msg("forecast generated")
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleMonitoring(w http.ResponseWriter, r *http.Request) {
	sel := s.store.Selection()
	sel.Symbol = normalizeSymbol(mux.Vars(r)["symbol"])
	s.store.Select(sel)

	v, _ := s.RefreshMonitoring(r.Context(), sel.Symbol)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := s.svc.ResolveAlert(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusNotFound, res)
		return
	}

	if sym := s.store.Selection().Symbol; sym != "" {
		s.RefreshMonitoring(r.Context(), sym)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	sel := s.store.Selection()
	sel.UserID = user
	s.store.Select(sel)

	v, _ := s.RefreshPortfolio(r.Context(), user)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var in TradeInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.svc.Trade(r.Context(), in.Request())
	if err != nil {
		writeError(w, err)
		return
	}
	log.Info().
		Str("user", in.UserID).
		Str("symbol", in.Symbol).
		Str("action", in.Action).
		Int("quantity", in.Quantity).
		Float64("cash", res.NewCashBalance).
		Msg("trade executed")

	s.RefreshPortfolio(r.Context(), in.UserID)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var in CreatePortfolioInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, err)
		return
	}

	p, err := s.svc.CreatePortfolio(r.Context(), model.CreatePortfolioRequest{
		UserID:         in.UserID,
		InitialCapital: in.InitialCapital,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.RefreshPortfolio(r.Context(), in.UserID)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	var in RetrainInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.ModelType == "" {
		in.ModelType = "ensemble"
	}

	res, err := s.svc.Retrain(r.Context(), model.RetrainRequest{Symbol: strings.ToUpper(in.Symbol), ModelType: in.ModelType})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleIncrementalUpdate(w http.ResponseWriter, r *http.Request) {
	var in RetrainInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.ModelType == "" {
		in.ModelType = "lstm"
	}

	res, err := s.svc.IncrementalUpdate(r.Context(), model.RetrainRequest{Symbol: strings.ToUpper(in.Symbol), ModelType: in.ModelType})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleModelVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.svc.ModelVersions(r.Context(), normalizeSymbol(mux.Vars(r)["symbol"]))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, ok := s.svc.Health(r.Context())
	code := http.StatusOK
	if !ok {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"dashboard": "ok",
		"upstream":  status,
		"healthy":   ok,
		"demo_mode": s.loader.DemoEnabled(),
		"clients":   s.ClientCount(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps err to a response. Validation failures are 400, upstream
// client errors pass through, everything else from the service is a 502.
func writeError(w http.ResponseWriter, err error) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   verrs.Error(),
			"details": verrs,
		})
		return
	}

	code := http.StatusBadGateway
	if status := api.StatusCode(err); status >= 400 && status < 500 {
		code = status
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
