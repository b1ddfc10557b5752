package handlers

import (
	"net/http"

	"discount-backend/static"
)

// PWAHandler serves the web app manifest and service worker the dashboard
// registers for push notifications.
type PWAHandler struct {
	AppName string
}

func NewPWAHandler(appName string) *PWAHandler {
	return &PWAHandler{AppName: appName}
}

func (h *PWAHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":             h.AppName,
		"short_name":       h.AppName,
		"start_url":        "/",
		"display":          "standalone",
		"background_color": "#ffffff",
		"theme_color":      "#0f6b3e",
		"icons": []map[string]string{
			{"src": "/static/icon-192.png", "sizes": "192x192", "type": "image/png"},
			{"src": "/static/icon-512.png", "sizes": "512x512", "type": "image/png"},
		},
	})
}

func (h *PWAHandler) ServiceWorker(w http.ResponseWriter, r *http.Request) {
	data, err := static.FS.ReadFile("sw.js")
	if err != nil {
		http.Error(w, "service worker unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/javascript")
	// Let the worker control the whole origin even though it is served
	// from a subpath.
	w.Header().Set("Service-Worker-Allowed", "/")
	w.Write(data)
}
