package http

import (
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"strings"

	"ahorrapp/internal/query"
)

// JSON bodies larger than this are rejected outright.
const maxJSONBody = 1 << 20

// decodeJSON parses a size-limited JSON request body into dst. On
// failure it writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// parseViewOptions reads filter, search and sort from the query string.
// Unknown values fall back to the defaults.
func parseViewOptions(r *http.Request) query.Options {
	q := r.URL.Query()
	return query.Options{
		Filter: query.ParseFilterKey(q.Get("filter")),
		Search: strings.TrimSpace(q.Get("q")),
		Sort:   query.ParseSortKey(q.Get("sort")),
	}
}

// requireUID reads the uid query parameter identifying the authenticated
// user. Authentication itself happens upstream.
func requireUID(r *http.Request) (string, bool) {
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))
	return uid, uid != ""
}

// extractClientIP prefers X-Forwarded-For, falling back to the socket
// peer address.
func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseImageUpload reads the "image" part of a multipart upload. On
// failure it writes the error response and returns ok=false.
func parseImageUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return nil, nil, false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing image file")
		return nil, nil, false
	}
	return file, header, true
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
