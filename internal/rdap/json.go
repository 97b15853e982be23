package rdap

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/rdap+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRDAPError(w http.ResponseWriter, status int, title string) {
	writeJSON(w, status, errorResponse{
		RDAPConformance: rdapConformance,
		ErrorCode:       status,
		Title:           title,
	})
}
