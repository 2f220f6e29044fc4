package types

import "fmt"

// MessageKind distinguishes inline text from blob-store attachments.
type MessageKind string

const (
	KindText MessageKind = "text"
	KindFile MessageKind = "file"
)

// Valid reports whether k is a known kind.
func (k MessageKind) Valid() bool { return k == KindText || k == KindFile }

// ParseMessageKind maps s to a MessageKind. An empty string means text.
func ParseMessageKind(s string) (MessageKind, error) {
	if s == "" {
		return KindText, nil
	}
	k := MessageKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown message kind %q", s)
	}
	return k, nil
}

// Message is one immutable ledger record. Sequence and Timestamp are
// assigned by the ledger; for KindFile, Content is a blob-store locator.
type Message struct {
	Sequence  uint64      `json:"sequence"`
	Sender    Address     `json:"sender"`
	Recipient Address     `json:"recipient"`
	Content   string      `json:"content"`
	Kind      MessageKind `json:"kind"`
	Timestamp int64       `json:"timestamp"`
	TxID      TxID        `json:"tx_id"`
	PrevHash  Hash        `json:"prev_hash"`
	Hash      Hash        `json:"hash"`
}

// Between reports whether m was exchanged between a and b, in either
// direction.
func (m Message) Between(a, b Address) bool {
	return (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a)
}

// BlobMetadata describes an attachment. Known is false when the blob store
// could not be reached and Size/MediaType are unset.
type BlobMetadata struct {
	Locator   string `json:"locator"`
	Size      int64  `json:"size"`
	MediaType string `json:"media_type"`
	Known     bool   `json:"known"`
}
