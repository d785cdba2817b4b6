package domain

// Rating is the aggregate review score a product carries upstream.
type Rating struct {
	Rate  float64 `json:"rate"`  // 0..5
	Count int     `json:"count"` // number of reviews
}

// Product represents a catalog product exactly as the upstream catalog
// service returns it. The json tags correspond to the upstream wire format,
// and the same shape is passed through on our own API responses.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"` // opaque asset URI, never fetched or validated here
	Rating      Rating  `json:"rating"`
}

// CartLine is a product snapshot plus the quantity added to the cart.
// Lines are keyed by product id; adding the same product again increments
// the quantity rather than appending a second line.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}
