package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/interfaces"
)

// WatchlistHandler serves the watchlist endpoints.
type WatchlistHandler struct {
	watchlist interfaces.WatchlistService
	logger    arbor.ILogger
}

func NewWatchlistHandler(watchlist interfaces.WatchlistService, logger arbor.ILogger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlist: watchlist,
		logger:    logger,
	}
}

// targetRequest carries add_watch / update_target fields from a form or a JSON body.
type targetRequest struct {
	StockCode string   `json:"stock_code"`
	Min       *float64 `json:"target_market_value_min"`
	Max       *float64 `json:"target_market_value_max"`
}

// parseTargetRequest accepts application/json, urlencoded and multipart bodies.
// Empty form values are treated as unset.
func parseTargetRequest(r *http.Request) (*targetRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req targetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, common.InvalidFormat("请求体不是有效的JSON")
		}
		return &req, nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, common.InvalidFormat("表单解析失败")
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, common.InvalidFormat("表单解析失败")
	}

	req := &targetRequest{StockCode: strings.TrimSpace(r.FormValue("stock_code"))}
	var err error
	if req.Min, err = formFloat(r, "target_market_value_min"); err != nil {
		return nil, err
	}
	if req.Max, err = formFloat(r, "target_market_value_max"); err != nil {
		return nil, err
	}
	return req, nil
}

func formFloat(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, common.InvalidFormat(fmt.Sprintf("%s 不是有效的数字", name))
	}
	return &v, nil
}

// ListHandler handles GET /api/watchlist
func (h *WatchlistHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	entries, err := h.watchlist.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// AddHandler handles POST /api/add_watch
func (h *WatchlistHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	req, err := parseTargetRequest(r)
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	if err := h.watchlist.Add(r.Context(), req.StockCode, req.Min, req.Max); err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w)
}

// UpdateTargetHandler handles POST /api/update_target
func (h *WatchlistHandler) UpdateTargetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	req, err := parseTargetRequest(r)
	if err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	if err := h.watchlist.UpdateTarget(r.Context(), req.StockCode, req.Min, req.Max); err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w)
}

// RemoveHandler handles DELETE /api/remove_watch/{code}
func (h *WatchlistHandler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	code := extractIDFromPath(r.URL.Path, "/api/remove_watch/")
	if err := h.watchlist.Remove(r.Context(), code); err != nil {
		WriteServiceError(w, r, h.logger, err)
		return
	}
	WriteSuccess(w)
}
