package httpapi

import (
	"expvar"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/producers", app.registerProducerHandler).Methods(http.MethodPost)
	r.HandleFunc("/producers", app.listProducersHandler).Methods(http.MethodGet)
	r.HandleFunc("/producers/{id}/products", app.stockHandler).Methods(http.MethodGet)
	r.HandleFunc("/producers/{id}/products", app.publishHandler).Methods(http.MethodPost)
	r.HandleFunc("/carts", app.newCartHandler).Methods(http.MethodPost)
	r.HandleFunc("/carts/{id}", app.getCartHandler).Methods(http.MethodGet)
	r.HandleFunc("/carts/{id}/items", app.addToCartHandler).Methods(http.MethodPost)
	r.HandleFunc("/carts/{id}/items", app.removeFromCartHandler).Methods(http.MethodDelete)
	r.HandleFunc("/carts/{id}/order", app.placeOrderHandler).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}", app.getOrderHandler).Methods(http.MethodGet)

	r.HandleFunc("/healthz", app.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/debug/metrics", app.statsHandler).Methods(http.MethodGet)
	r.Handle("/debug/vars", expvar.Handler())
	r.Handle("/metrics", promhttp.HandlerFor(app.Gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	r.HandleFunc("/openapi.yaml", app.openapiHandler).Methods(http.MethodGet)
	r.HandleFunc("/docs", app.docsHandler).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusNotFound, CodeNotFound, "")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "")
	})
	r.Use(withRoute)
	return WithRequestID(WithLogging(WithRecover(r)))
}
