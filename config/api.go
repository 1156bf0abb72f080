package config

// APIConfig enables the read-only status API when Address is set.
type APIConfig struct {
	Address string `json:"address"`
}
