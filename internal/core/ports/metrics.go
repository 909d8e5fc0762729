package ports

// GameMetrics receives business counters from the use cases. Implementations
// must be safe for concurrent use.
type GameMetrics interface {
	OrderCreated(regionID string)
	OrderPickedUp()
	OrderDelivered(payout float64, onTime bool)
	OrderCancelled(reason string)
	OrderExpired(count int)
	SearchFinished(outcome string)
}

type NopMetrics struct{}

func (NopMetrics) OrderCreated(string) {}

func (NopMetrics) OrderPickedUp() {}

func (NopMetrics) OrderDelivered(float64, bool) {}

func (NopMetrics) OrderCancelled(string) {}

func (NopMetrics) OrderExpired(int) {}

func (NopMetrics) SearchFinished(string) {}
