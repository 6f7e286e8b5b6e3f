package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/interfaces"
)

// StockHandler serves the market-data endpoints.
type StockHandler struct {
	stocks interfaces.StockService
	logger arbor.ILogger
}

func NewStockHandler(stocks interfaces.StockService, logger arbor.ILogger) *StockHandler {
	return &StockHandler{
		stocks: stocks,
		logger: logger,
	}
}

// StockInfoHandler handles GET /api/stock_info/{code}?force_refresh=true
func (h *StockHandler) StockInfoHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	code := extractIDFromPath(r.URL.Path, "/api/stock_info/")
	info, err := h.stocks.GetStockInfo(r.Context(), code, queryBool(r, "force_refresh"))
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

// ValueAnalysisHandler handles GET /api/value_analysis/{code}
func (h *StockHandler) ValueAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	code := extractIDFromPath(r.URL.Path, "/api/value_analysis/")
	data, err := h.stocks.GetValueAnalysisData(r.Context(), code, queryBool(r, "force_refresh"))
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, data)
}

// CompanyDetailHandler handles GET /api/company_detail/{code}
func (h *StockHandler) CompanyDetailHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	code := extractIDFromPath(r.URL.Path, "/api/company_detail/")
	detail, err := h.stocks.GetCompanyDetail(r.Context(), code)
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// HoldersHandler handles GET /api/holders/{code}
func (h *StockHandler) HoldersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	code := extractIDFromPath(r.URL.Path, "/api/holders/")
	holders, err := h.stocks.GetTopHolders(r.Context(), code)
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, holders)
}

// ForecastHandler handles GET /api/performance_forecast/{code}
func (h *StockHandler) ForecastHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	code := extractIDFromPath(r.URL.Path, "/api/performance_forecast/")
	forecast, err := h.stocks.GetForecast(r.Context(), code)
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, forecast)
}

// IndexInfoHandler handles GET /api/index_info
func (h *StockHandler) IndexInfoHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	indices, err := h.stocks.GetIndexInfo(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, indices)
}
