package server

import (
	"encoding/json"
	"net/http"

	"github.com/desertthunder/tracklist/internal/forms"
	"github.com/desertthunder/tracklist/internal/library"
)

// Envelope is the JSON body of every page-like response.
type Envelope struct {
	Notices []string           `json:"notices"`
	Errors  []forms.FieldError `json:"errors"`
	Data    any                `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respond(w http.ResponseWriter, status int, data any, notices ...string) {
	if notices == nil {
		notices = []string{}
	}
	writeJSON(w, status, Envelope{Notices: notices, Errors: []forms.FieldError{}, Data: data})
}

func respondInvalid(w http.ResponseWriter, status int, v *forms.Validation) {
	writeJSON(w, status, Envelope{Notices: []string{}, Errors: v.Errors, Data: nil})
}

func notices(result *library.Result) []string {
	msgs := make([]string, len(result.Notices))
	for i, n := range result.Notices {
		msgs[i] = string(n)
	}
	return msgs
}
