package model

// Pet is owned by the pet registry; this service only reads it.
type Pet struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Species string `json:"species"`
}
