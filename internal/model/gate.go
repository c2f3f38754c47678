package model

// GateResponse represents response for GET /api/gate
type GateResponse struct {
	State    string `json:"state" enums:"loading,unauthenticated,no_wallet,authenticated"`
	Redirect string `json:"redirect,omitempty"` // sign-in path when unauthenticated
}

// Event is one server-sent event pushed to a browser profile
type Event struct {
	Type    string `json:"type" enums:"gate,redirect,navigate,reload,notice"`
	State   string `json:"state,omitempty"`
	Path    string `json:"path,omitempty"`
	ChainID string `json:"chainId,omitempty"`
	Notice  string `json:"notice,omitempty"`
	Message string `json:"message,omitempty"`
}
