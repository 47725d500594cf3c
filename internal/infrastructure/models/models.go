package models

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&SwapFactory{},
		&SwapRegistry{},
		&SwapOffer{},
		&SwapEvent{},
	}
}
