package types

// AgentEventType distinguishes signing agent notifications.
type AgentEventType int

const (
	// AccountChanged reports a new active account, or none when Account is nil.
	AccountChanged AgentEventType = iota + 1
	// NetworkChanged reports that the agent now targets another network.
	NetworkChanged
)

// AgentEvent is emitted by a signing agent when its active account or
// network changes.
type AgentEvent struct {
	Type    AgentEventType
	Account *Address
	Network NetworkID
}

// SessionState is the process-local view of the signing connection.
type SessionState struct {
	Address   *Address  `json:"address,omitempty"`
	Connected bool      `json:"connected"`
	Network   NetworkID `json:"network"`
}

// AgentState is what the local agent persists between runs.
type AgentState struct {
	Network    NetworkID `json:"network"`
	Authorized []Address `json:"authorized"`
}
