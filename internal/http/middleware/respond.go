package middleware

import (
	"encoding/json"
	"net/http"
)

// respondError writes the API error envelope. Middleware rejections use the
// same shape as handler errors so clients parse one format.
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
