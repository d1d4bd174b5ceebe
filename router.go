package main

import (
	"net/http"

	"optionanalyzer/authentication"
	"optionanalyzer/controllers"
	"optionanalyzer/metrics"
)

func registerRoutes(mux *http.ServeMux, screens *controllers.Screens) {
	// Authentication
	mux.HandleFunc("/auth/gettoken", authentication.TokenHandler)
	mux.HandleFunc("/auth/logout", authentication.LogoutHandler)

	// Screens
	mux.HandleFunc("/screen/select", screens.SelectOptions)
	mux.HandleFunc("/screen/confirm", screens.ConfirmSelection)
	mux.HandleFunc("/screen/analyze", screens.AnalyzeContract)
	mux.HandleFunc("/screen/advise", screens.Advise)

	// Session and catalog control
	mux.HandleFunc("/session/reset", screens.ResetSession)
	mux.HandleFunc("/catalog/refresh", screens.RefreshCatalog)

	// Observability
	mux.Handle("/metrics", metrics.Handler())
}
