package dto

import "time"

// TokenRequest is the client-credentials exchange payload.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TriggerRunRequest tunes one analysis run. Every field is optional; the
// configured defaults apply when omitted.
type TriggerRunRequest struct {
	Source     string   `json:"source"`
	AsOf       string   `json:"as_of"`
	Dimensions []string `json:"dimensions"`
	TopN       int      `json:"top_n"`
}
