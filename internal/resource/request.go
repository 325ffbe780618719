package resource

// ResourceRequest is the resource form as submitted. Quantity arrives as
// text and is parsed before anything is written.
type ResourceRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}
