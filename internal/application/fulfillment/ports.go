package fulfillment

type IDGenerator interface {
	NewID() string
}
