package rpc

import "cryptocomm/internal/domain"

// NetworkInfo is the body of GET /network.
type NetworkInfo struct {
	NetworkID domain.NetworkID `json:"network_id"`
}

// ExistsResponse is the body of the identity exists route.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ResolveResponse is the body of the username route.
type ResolveResponse struct {
	Address domain.Address `json:"address"`
	Found   bool           `json:"found"`
}

// ErrorResponse is returned with every non-2xx status. Code is a stable
// machine-readable name from domain.ErrorCode.
type ErrorResponse struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}
