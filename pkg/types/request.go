package types

// ProductRequest is the call contract of the remote product source. All
// fields are optional, the backend decides what an empty request returns.
type ProductRequest struct {
	Text     string `json:"q,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}
