package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fairyhunter13/marketplace-simulator/internal/config"
	httpopenapi "github.com/fairyhunter13/marketplace-simulator/internal/http/openapi"
	"github.com/fairyhunter13/marketplace-simulator/internal/marketplace"
	"github.com/fairyhunter13/marketplace-simulator/internal/model"
	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
	"github.com/fairyhunter13/marketplace-simulator/internal/orders"
)

type App struct {
	Cfg      config.Config
	Market   *marketplace.Marketplace[model.Product]
	Orders   *orders.MemorySink
	Archive  orders.Sink
	Gatherer prometheus.Gatherer
	closing  atomic.Bool
	started  time.Time
}

// NewApp wires the API. Placed orders are always kept in memory for lookup and
// additionally recorded to archive when it is non-nil.
func NewApp(cfg config.Config, m *marketplace.Marketplace[model.Product], archive orders.Sink, g prometheus.Gatherer) *App {
	mem := orders.NewMemorySink()
	sink := orders.Sink(mem)
	if archive != nil {
		sink = orders.Fanout{mem, archive}
	}
	if g == nil {
		g = prometheus.NewRegistry()
	}
	return &App{Cfg: cfg, Market: m, Orders: mem, Archive: sink, Gatherer: g, started: time.Now()}
}

// RestoreOrders fills the order lookup from a previously written archive.
func (a *App) RestoreOrders(ctx context.Context, src orders.Loader) (int, error) {
	return orders.Preload(ctx, src, a.Orders)
}

func (a *App) StartShutdown() {
	a.closing.Store(true)
}

type producerView struct {
	ProducerID  string `json:"producer_id"`
	QueueLength int    `json:"queue_length"`
}

type cartView struct {
	CartID int                                `json:"cart_id"`
	Items  []marketplace.Entry[model.Product] `json:"items"`
}

type result struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// mutating reports false and writes 503 once shutdown has begun.
func (a *App) mutating(w http.ResponseWriter) bool {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, CodeShuttingDown, "")
		return false
	}
	return true
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (model.Product, bool) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, CodeUnsupportedMedia, "expected application/json")
		return model.Product{}, false
	}
	var p model.Product
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		WriteJSONError(w, http.StatusBadRequest, CodeInvalidJSON, err.Error())
		return model.Product{}, false
	}
	if p.Type == "" || p.Name == "" {
		WriteJSONError(w, http.StatusBadRequest, CodeValidation, "product_type and name are required")
		return model.Product{}, false
	}
	if p.Price < 0 {
		WriteJSONError(w, http.StatusBadRequest, CodeValidation, "price must be >= 0")
		return model.Product{}, false
	}
	return p, true
}

// cartID parses the {id} path variable and checks the cart exists.
func (a *App) cartID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, CodeNotFound, "unknown cart")
		return 0, false
	}
	if _, ok := a.Market.Cart(id); !ok {
		WriteJSONError(w, http.StatusNotFound, CodeNotFound, "unknown cart")
		return 0, false
	}
	return id, true
}

func (a *App) registerProducerHandler(w http.ResponseWriter, r *http.Request) {
	if !a.mutating(w) {
		return
	}
	id := a.Market.RegisterProducer()
	writeJSON(w, http.StatusCreated, map[string]string{"producer_id": id})
	obs.Logger.Infow("producer_registered", "request_id", RequestIDFromContext(r.Context()), "producer_id", id)
}

func (a *App) listProducersHandler(w http.ResponseWriter, r *http.Request) {
	ids := a.Market.Producers()
	views := make([]producerView, 0, len(ids))
	for _, id := range ids {
		stock, _ := a.Market.Stock(id)
		views = append(views, producerView{ProducerID: id, QueueLength: len(stock)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"producers": views})
}

func (a *App) stockHandler(w http.ResponseWriter, r *http.Request) {
	stock, ok := a.Market.Stock(mux.Vars(r)["id"])
	if !ok {
		WriteJSONError(w, http.StatusNotFound, CodeNotFound, "unknown producer")
		return
	}
	if stock == nil {
		stock = []model.Product{}
	}
	writeJSON(w, http.StatusOK, stock)
}

func (a *App) publishHandler(w http.ResponseWriter, r *http.Request) {
	if !a.mutating(w) {
		return
	}
	id := mux.Vars(r)["id"]
	if _, ok := a.Market.Stock(id); !ok {
		WriteJSONError(w, http.StatusNotFound, CodeNotFound, "unknown producer")
		return
	}
	p, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	reqID := RequestIDFromContext(r.Context())
	if !a.Market.Publish(id, p) {
		WriteJSONError(w, http.StatusConflict, CodeQueueFull, "producer queue is at capacity, retry later")
		obs.Logger.Debugw("publish_rejected", "request_id", reqID, "producer_id", id)
		return
	}
	writeJSON(w, http.StatusCreated, result{Status: "published", RequestID: reqID})
}

func (a *App) newCartHandler(w http.ResponseWriter, r *http.Request) {
	if !a.mutating(w) {
		return
	}
	id := a.Market.NewCart()
	writeJSON(w, http.StatusCreated, map[string]int{"cart_id": id})
}

func (a *App) getCartHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := a.cartID(w, r)
	if !ok {
		return
	}
	items, _ := a.Market.Cart(id)
	writeJSON(w, http.StatusOK, cartView{CartID: id, Items: items})
}

func (a *App) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	if !a.mutating(w) {
		return
	}
	id, ok := a.cartID(w, r)
	if !ok {
		return
	}
	p, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	if !a.Market.AddToCart(id, p) {
		WriteJSONError(w, http.StatusConflict, CodeUnavailable, "product not available, retry later")
		return
	}
	writeJSON(w, http.StatusOK, result{Status: "added", RequestID: RequestIDFromContext(r.Context())})
}

func (a *App) removeFromCartHandler(w http.ResponseWriter, r *http.Request) {
	if !a.mutating(w) {
		return
	}
	id, ok := a.cartID(w, r)
	if !ok {
		return
	}
	p, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	if !a.Market.RemoveFromCart(id, p) {
		WriteJSONError(w, http.StatusConflict, CodeNotInCart, "")
		return
	}
	writeJSON(w, http.StatusOK, result{Status: "removed", RequestID: RequestIDFromContext(r.Context())})
}

func (a *App) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	if !a.mutating(w) {
		return
	}
	id, ok := a.cartID(w, r)
	if !ok {
		return
	}
	entries, ok := a.Market.PlaceOrder(id)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, CodeNotFound, "unknown cart")
		return
	}
	consumer := r.Header.Get("X-Consumer")
	order := orders.NewOrder(consumer, id, entries)
	reqID := RequestIDFromContext(r.Context())
	if err := a.Archive.Record(r.Context(), order); err != nil {
		obs.Logger.Warnw("order_archive_failed", "request_id", reqID, "order_id", order.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, order)
	obs.Logger.Infow("order_placed",
		"request_id", reqID,
		"order_id", order.ID,
		"cart_id", id,
		"items", len(order.Items),
	)
}

func (a *App) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, CodeNotFound, "")
		return
	}
	o, ok := a.Orders.Get(id)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, CodeNotFound, "")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) statsHandler(w http.ResponseWriter, r *http.Request) {
	s := a.Market.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"producers":               s.Producers,
		"carts":                   s.Carts,
		"queued":                  s.Queued,
		"orders_placed":           a.Orders.Len(),
		"queue_size_per_producer": a.Market.Capacity(),
		"uptime_sec":              time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Marketplace API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
