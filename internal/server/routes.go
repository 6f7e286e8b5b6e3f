package server

import (
	"net/http"

	"github.com/ternarybob/stockdash/internal/models"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Market data
	mux.HandleFunc("/api/stock_info/", s.app.StockHandler.StockInfoHandler)          // GET /{code}
	mux.HandleFunc("/api/value_analysis/", s.app.StockHandler.ValueAnalysisHandler)  // GET /{code}
	mux.HandleFunc("/api/company_detail/", s.app.StockHandler.CompanyDetailHandler)  // GET /{code}
	mux.HandleFunc("/api/holders/", s.app.StockHandler.HoldersHandler)               // GET /{code}
	mux.HandleFunc("/api/performance_forecast/", s.app.StockHandler.ForecastHandler) // GET /{code}
	mux.HandleFunc("/api/index_info", s.app.StockHandler.IndexInfoHandler)           // GET

	// API routes - Watchlist
	mux.HandleFunc("/api/watchlist", s.app.WatchlistHandler.ListHandler)             // GET
	mux.HandleFunc("/api/add_watch", s.app.WatchlistHandler.AddHandler)              // POST
	mux.HandleFunc("/api/update_target", s.app.WatchlistHandler.UpdateTargetHandler) // POST
	mux.HandleFunc("/api/remove_watch/", s.app.WatchlistHandler.RemoveHandler)       // DELETE /{code}

	// API routes - Analysis tracks
	s.handleTrack(mux, models.TrackValue, "/api/ai_analysis/")
	s.handleTrack(mux, models.TrackTao, "/api/tao_analysis/")
	s.handleTrack(mux, models.TrackMasters, "/api/master_analysis/")

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

func (s *Server) handleTrack(mux *http.ServeMux, track models.Track, prefix string) {
	mux.HandleFunc(prefix, s.app.AnalysisHandler.TrackHandler(track, prefix))
}
