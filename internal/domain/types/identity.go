package types

// Identity is a registry entry: an address bound to a username and the
// ordered set of addresses it has befriended.
type Identity struct {
	Address  Address   `json:"address"`
	Username Username  `json:"username"`
	Friends  []Address `json:"friends"`
}

// HasFriend reports whether addr is in the identity's friend set.
func (id Identity) HasFriend(addr Address) bool {
	for _, f := range id.Friends {
		if f == addr {
			return true
		}
	}
	return false
}

// Friend is a friend address resolved for display. Placeholder is set when
// the friend's own record could not be read and Username is a stand-in.
type Friend struct {
	Address     Address  `json:"address"`
	Username    Username `json:"username"`
	Placeholder bool     `json:"placeholder,omitempty"`
}
