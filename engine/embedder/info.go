package embedder

// Info is the static metadata of the bound model. It is captured once at
// construction and never mutated, so callers can validate compatibility
// (dimensionality, token limits) before sending large batches.
type Info struct {
	Name       string `json:"name"`
	Dimensions int    `json:"dimensions"`
	MaxTokens  int    `json:"max_tokens"`
}
