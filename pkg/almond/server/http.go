package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/cors"
)

// NewAdminHandler builds the HTTP admin surface: POST /tokenize mirrors the
// TCP protocol for one-shot callers, POST /cache/clear drops the lexicon
// caches. CORS is open so browser-based tools can call it.
func NewAdminHandler(svc Service) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/tokenize", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, &ErrorResponse{Req: req.Req, Error: "malformed request: " + err.Error()})
			return
		}
		ex, err := toExample(&req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, &ErrorResponse{Req: req.Req, Error: err.Error()})
			return
		}
		res, err := svc.Tokenize(r.Context(), req.LanguageTag, ex)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, &ErrorResponse{Req: req.Req, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, toResponse(&req, res))
	})

	mux.HandleFunc("/cache/clear", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		svc.ClearCaches()
		w.WriteHeader(http.StatusNoContent)
	})

	return cors.Default().Handler(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
