package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/zlovtnik/homeswift/internal/middleware"
	"github.com/zlovtnik/homeswift/internal/models"
)

// maxBodyBytes bounds request payloads
const maxBodyBytes = 1 << 20

// publicActor is recorded as performed_by for unauthenticated bookings
const publicActor = "customer"

// parseIDFromPath extracts an int64 ID from the request path.
// The name parameter should match the path variable name (e.g., "id").
func parseIDFromPath(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	return strconv.ParseInt(idStr, 10, 64)
}

// parsePagination extracts pagination parameters from query string
func parsePagination(r *http.Request) models.PaginationParams {
	params := models.DefaultPagination()

	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			params.Page = parsed
		}
	}
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			params.PageSize = parsed
		}
	}

	return params
}

// decodeJSON decodes a bounded request body into dst. An empty body is an error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// actor names who performed an operation for the audit trail
func actor(r *http.Request) string {
	if u := middleware.GetUser(r.Context()); u != "" {
		return u
	}
	return publicActor
}

// clientIP returns the caller address, preferring the first X-Forwarded-For hop
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent, log the error
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response in the standard format
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, models.ErrorResponse(code, message, nil))
}

func writeErrorDetails(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, models.ErrorResponse(code, message, details))
}
