package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth   *AuthHandler
	Flows  *FlowHandler
	Files  *FileHandler
	Health *HealthHandler
}

// NewRouter registers all routes. Route templates must match EndpointSecurityConfig.
func NewRouter(h Handlers, auth *AuthMiddleware) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware, auth.Handler)

	router.HandleFunc("/healthz", h.Health.Healthz).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)

	api.HandleFunc("/files", h.Files.Upload).Methods(http.MethodPut)
	api.HandleFunc("/files", h.Files.Download).Methods(http.MethodGet)

	srm := api.PathPrefix("/srm").Subrouter()
	srm.HandleFunc("/customers", h.Flows.SearchCustomers).Methods(http.MethodGet)
	srm.HandleFunc("/vehicles", h.Flows.SearchVehicles).Methods(http.MethodGet)
	srm.HandleFunc("/flows", h.Flows.StartFlow).Methods(http.MethodPost)
	srm.HandleFunc("/flows/{flowID}", h.Flows.GetFlow).Methods(http.MethodGet)
	srm.HandleFunc("/flows/{flowID}", h.Flows.AbandonFlow).Methods(http.MethodDelete)
	srm.HandleFunc("/flows/{flowID}/customer", h.Flows.SubmitCustomer).Methods(http.MethodPost)
	srm.HandleFunc("/flows/{flowID}/vehicle", h.Flows.SubmitVehicle).Methods(http.MethodPost)
	srm.HandleFunc("/flows/{flowID}/quote", h.Flows.PreviewQuote).Methods(http.MethodPost)
	srm.HandleFunc("/flows/{flowID}/payment", h.Flows.SubmitPayment).Methods(http.MethodPost)

	return router
}
