package handlers

import "net/http"

// Health answers the UI's liveness poll. The gateway holds no state and
// opens provider connections per request, so a serving process is a
// healthy one.
func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
