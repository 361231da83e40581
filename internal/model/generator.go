package model

// GenerateRequest represents a password generation request.
// Pointers distinguish a missing field from an explicit zero value: a nil
// Length means 16 and a nil bool means true.
type GenerateRequest struct {
	Length  *int  `json:"length"`
	Numbers *bool `json:"numbers"`
	Symbols *bool `json:"symbols"`
}

// GenerateResponse represents a password generation response.
type GenerateResponse struct {
	Password string `json:"password"`
	Length   int    `json:"length"`
}
