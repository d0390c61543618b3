package orders

// Event names of the orders bus.
const (
	EventCharge = "charge"
	EventRefund = "refund"
	EventShip   = "ship"
)

// Charge is the payload of EventCharge and EventRefund.
type Charge struct {
	OrderID string
	Amount  int64
}
