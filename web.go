package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type health struct {
	Status  string `json:"status"`
	Gateway string `json:"gateway"`
}

// newRouter serves the keep-alive endpoints hosting platforms ping.
func newRouter(ready func() bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Bot is alive!"))
	}).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		h := health{Status: "ok", Gateway: "connected"}
		code := http.StatusOK
		if !ready() {
			h = health{Status: "starting", Gateway: "disconnected"}
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(h); err != nil {
			zap.L().Warn("failed to write health", zap.Error(err))
		}
	}).Methods(http.MethodGet)

	return r
}
