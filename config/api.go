package config

// APIConfig exposes the plans over HTTP. An empty Addr disables the API.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, must be sent as "Authorization: Bearer <token>".
	Token string `json:"token"`
}
