package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// chainHead is the tip of one message ledger's hash chain.
type chainHead struct {
	Sequence  uint64      `json:"sequence"`
	Hash      domain.Hash `json:"hash"`
	Timestamp int64       `json:"timestamp"`
}

// entryPayload is the canonical encoding hashed into the chain. It is every
// Message field except Hash itself.
type entryPayload struct {
	Sequence  uint64             `json:"sequence"`
	Sender    domain.Address     `json:"sender"`
	Recipient domain.Address     `json:"recipient"`
	Content   string             `json:"content"`
	Kind      domain.MessageKind `json:"kind"`
	Timestamp int64              `json:"timestamp"`
	TxID      domain.TxID        `json:"tx_id"`
	PrevHash  domain.Hash        `json:"prev_hash"`
}

func hashMessage(m domain.Message) (domain.Hash, error) {
	payload, err := json.Marshal(entryPayload{
		Sequence:  m.Sequence,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Content:   m.Content,
		Kind:      m.Kind,
		Timestamp: m.Timestamp,
		TxID:      m.TxID,
		PrevHash:  m.PrevHash,
	})
	if err != nil {
		return domain.Hash{}, err
	}
	return crypto.ChainHash(m.PrevHash, payload), nil
}

func messagePrefix(ledger domain.Address) []byte {
	return []byte("msg:" + ledger.Hex() + ":")
}

func messageKey(ledger domain.Address, seq uint64) []byte {
	key := messagePrefix(ledger)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(key, b[:]...)
}

func headKey(ledger domain.Address) []byte { return []byte("head:" + ledger.Hex()) }

// messageLog is the append-only, hash-chained message store. Each ledger
// contract has its own chain and sequence space.
type messageLog struct {
	db *leveldb.DB
}

func (l *messageLog) head(ledger domain.Address) (chainHead, error) {
	raw, err := l.db.Get(headKey(ledger), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return chainHead{}, nil
	}
	if err != nil {
		return chainHead{}, err
	}
	var h chainHead
	if err := json.Unmarshal(raw, &h); err != nil {
		return chainHead{}, fmt.Errorf("decode chain head: %w", err)
	}
	return h, nil
}

// append stages m onto the chain in batch. Sequence, Timestamp, PrevHash
// and Hash are assigned here; timestamps never decrease along the chain.
func (l *messageLog) append(batch *leveldb.Batch, ledger domain.Address, m domain.Message, now int64) (domain.Message, error) {
	h, err := l.head(ledger)
	if err != nil {
		return domain.Message{}, err
	}
	if now < h.Timestamp {
		now = h.Timestamp
	}

	m.Sequence = h.Sequence + 1
	m.Timestamp = now
	m.PrevHash = h.Hash
	m.Hash, err = hashMessage(m)
	if err != nil {
		return domain.Message{}, err
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return domain.Message{}, err
	}
	headRaw, err := json.Marshal(chainHead{Sequence: m.Sequence, Hash: m.Hash, Timestamp: m.Timestamp})
	if err != nil {
		return domain.Message{}, err
	}
	batch.Put(messageKey(ledger, m.Sequence), raw)
	batch.Put(headKey(ledger), headRaw)
	return m, nil
}

// conversation returns every message between a and b in append order.
func (l *messageLog) conversation(ledger, a, b domain.Address) ([]domain.Message, error) {
	out := []domain.Message{}
	err := l.walk(ledger, func(m domain.Message) error {
		if m.Between(a, b) {
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// verify recomputes every link of the chain and compares the tip against
// the stored head.
func (l *messageLog) verify(ledger domain.Address) (domain.ChainReport, error) {
	var (
		prev domain.Hash
		n    uint64
	)
	err := l.walk(ledger, func(m domain.Message) error {
		n++
		if m.Sequence != n {
			return fmt.Errorf("%w: expected sequence %d, found %d", domain.ErrLedgerTampered, n, m.Sequence)
		}
		if m.PrevHash != prev {
			return fmt.Errorf("%w: entry %d does not link to its predecessor", domain.ErrLedgerTampered, n)
		}
		h, err := hashMessage(m)
		if err != nil {
			return err
		}
		if h != m.Hash {
			return fmt.Errorf("%w: entry %d hash mismatch", domain.ErrLedgerTampered, n)
		}
		prev = m.Hash
		return nil
	})
	if err != nil {
		return domain.ChainReport{}, err
	}

	head, err := l.head(ledger)
	if err != nil {
		return domain.ChainReport{}, err
	}
	if head.Sequence != n || head.Hash != prev {
		return domain.ChainReport{}, fmt.Errorf("%w: head does not match chain tip", domain.ErrLedgerTampered)
	}
	return domain.ChainReport{Entries: n, Head: prev}, nil
}

func (l *messageLog) walk(ledger domain.Address, fn func(domain.Message) error) error {
	iter := l.db.NewIterator(util.BytesPrefix(messagePrefix(ledger)), nil)
	defer iter.Release()

	for iter.Next() {
		var m domain.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return fmt.Errorf("%w: undecodable entry: %v", domain.ErrLedgerTampered, err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return iter.Error()
}
