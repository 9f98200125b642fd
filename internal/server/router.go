package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/start", s.StartRun)
	mux.HandleFunc("/run", s.GetRun)
	mux.HandleFunc("/stream", s.Stream)
	mux.HandleFunc("/export", s.ExportCSV)
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	return mux
}
