package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"discount-backend/internal/handlers"
	"discount-backend/internal/metrics"
	"discount-backend/internal/middleware"
	"discount-backend/internal/models"
	"discount-backend/internal/ws"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth     *handlers.AuthHandler
	Requests *handlers.RequestHandler
	Contacts *handlers.ContactHandler
	Users    *handlers.UserHandler
	Coupons  *handlers.CouponHandler
	Settings *handlers.SettingHandler
	Push     *handlers.PushHandler
	PWA      *handlers.PWAHandler
	Health   *handlers.HealthHandler
}

// NewRouter wires the full HTTP surface. Role checks that depend on the
// request payload stay in the services; the router only gates whole routes.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware, hub *ws.Hub, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	// Installed on the router so mux.CurrentRoute resolves route templates
	r.Use(middleware.Metrics)

	// Unauthenticated surface
	r.HandleFunc("/healthz", h.Health.Check).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/pwa/manifest.json", h.PWA.Manifest).Methods(http.MethodGet)
	r.HandleFunc("/static/sw.js", h.PWA.ServiceWorker).Methods(http.MethodGet)

	r.Handle("/api/login",
		middleware.LoginRateLimiter.Middleware(http.HandlerFunc(h.Auth.Login))).Methods(http.MethodPost)

	// Everything below requires a session
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMW.RequireAuth)

	api.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodPost)
	api.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)

	api.HandleFunc("/dashboard", h.Requests.Dashboard).Methods(http.MethodGet)

	api.HandleFunc("/requests", h.Requests.List).Methods(http.MethodGet)
	api.HandleFunc("/requests", h.Requests.Create).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}", h.Requests.Get).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id:[0-9]+}/approve", h.Requests.Approve).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}/reject", h.Requests.Reject).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}/done", h.Requests.Finalize).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}/delete", h.Requests.Delete).Methods(http.MethodPost)

	api.HandleFunc("/contacts", h.Contacts.List).Methods(http.MethodGet)
	api.HandleFunc("/contacts", h.Contacts.Create).Methods(http.MethodPost)
	api.HandleFunc("/contacts/lookup", h.Contacts.Lookup).Methods(http.MethodGet)

	api.HandleFunc("/users/references", h.Users.References).Methods(http.MethodGet)

	api.HandleFunc("/groups", h.Coupons.ListGroups).Methods(http.MethodGet)

	api.HandleFunc("/push/key", h.Push.PublicKey).Methods(http.MethodGet)
	api.HandleFunc("/push/subscribe", h.Push.Subscribe).Methods(http.MethodPost)
	api.HandleFunc("/push/unsubscribe", h.Push.Unsubscribe).Methods(http.MethodPost)

	// Inventory management, admins and above
	admin := api.NewRoute().Subrouter()
	admin.Use(authMW.RequireRole(models.RoleAdmin, models.RoleSuperadmin))
	admin.HandleFunc("/groups", h.Coupons.CreateGroup).Methods(http.MethodPost)
	admin.HandleFunc("/coupons", h.Coupons.Inventory).Methods(http.MethodGet)
	admin.HandleFunc("/coupons/enlist", h.Coupons.Enlist).Methods(http.MethodPost)

	// Account and settings management, superadmin only
	super := api.NewRoute().Subrouter()
	super.Use(authMW.RequireRole(models.RoleSuperadmin))
	super.HandleFunc("/users", h.Users.List).Methods(http.MethodGet)
	super.HandleFunc("/users", h.Users.Create).Methods(http.MethodPost)
	super.HandleFunc("/settings", h.Settings.List).Methods(http.MethodGet)
	super.HandleFunc("/settings", h.Settings.Update).Methods(http.MethodPut)

	// Live dashboard feed; session checked before the upgrade
	r.Handle("/ws/feed", authMW.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		metrics.FeedClients.Inc()
		defer metrics.FeedClients.Dec()
		hub.Serve(w, req)
	}))).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	var handler http.Handler = r
	handler = middleware.APIRateLimiter.Middleware(handler)
	handler = c.Handler(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.HTTPSRedirect(handler)

	return handler
}
