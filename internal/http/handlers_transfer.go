package http

import (
	"fmt"
	"io"
	"net/http"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.svc.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10*maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}

	count, err := s.svc.Import(r.Context(), data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid import payload"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": count})
}
