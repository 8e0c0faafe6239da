package domain

// TokenPair is the credential pair minted by the auth endpoints. The access
// token is short-lived; the refresh token outlives it and is exchanged for a
// fresh pair without re-authentication.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// HasAccess reports whether an access token is present.
func (t TokenPair) HasAccess() bool { return t.Access != "" }

// HasRefresh reports whether a refresh token is present.
func (t TokenPair) HasRefresh() bool { return t.Refresh != "" }
