package marketplace

// Observer receives marketplace activity. QueueLength is called while the
// producer's lock is held, so reports for one producer arrive in the order the
// queue changed; the other callbacks run after locks are released. No callback
// may call back into the Marketplace.
type Observer interface {
	Published(producerID string, accepted bool)
	CartAdded(accepted bool)
	CartRemoved(accepted bool)
	OrderPlaced(items int)
	QueueLength(producerID string, n int)
}

type nopObserver struct{}

func (nopObserver) Published(string, bool)  {}
func (nopObserver) CartAdded(bool)          {}
func (nopObserver) CartRemoved(bool)        {}
func (nopObserver) OrderPlaced(int)         {}
func (nopObserver) QueueLength(string, int) {}
