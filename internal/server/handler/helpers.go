package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/swipebet/swipebet/internal/domain"
	"github.com/swipebet/swipebet/internal/server/middleware"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// writeError sends a JSON-formatted error response, echoing the request id
// assigned by the logging middleware so clients can quote it in bug reports.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: middleware.RequestID(r.Context()),
	})
}

// parseFeedQuery extracts pagination and exclusion parameters from the query
// string. Defaults: limit=50 (max 500), offset=0. excludeIds is a
// comma-separated list of market ids.
func parseFeedQuery(r *http.Request) domain.FeedQuery {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	var exclude map[string]struct{}
	if v := q.Get("excludeIds"); v != "" {
		exclude = make(map[string]struct{})
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				exclude[id] = struct{}{}
			}
		}
	}

	return domain.FeedQuery{
		Limit:      limit,
		Offset:     offset,
		ExcludeIDs: exclude,
	}
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
