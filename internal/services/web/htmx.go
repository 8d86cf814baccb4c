package web

import (
	"net/http"
	"strings"
)

// htmxRequestHeader marks requests issued by htmx for in-place swaps.
const htmxRequestHeader = "HX-Request"

// isHTMXRequest reports whether the request was initiated by htmx.
func isHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(htmxRequestHeader), "true")
}

// writeHTML sends an already rendered document or fragment.
func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", htmxRequestHeader)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
