package customHttpClient

import (
	"net/http"

	"kbase/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// PooledClient hands out an http.Client that reuses connections, so the
// LLM round-trips skip the TLS handshake after the first call.
func PooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
