package conversation

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"cryptocomm/internal/domain"
)

// State is the load state of a View.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}

// ErrNoCounterpart is returned by operations that need an open conversation.
var ErrNoCounterpart = errors.New("no conversation open")

// Entry is a message prepared for display.
type Entry struct {
	domain.Message
	Mine bool
	// Blob is set for file messages. It is never nil for KindFile; when the
	// blob store cannot be reached Blob.Known is false.
	Blob *domain.BlobMetadata
}

// Snapshot is a consistent copy of a View's state.
type Snapshot struct {
	Counterpart *domain.Address
	State       State
	Messages    []domain.Message
	Err         error
}

// View is the conversation between the session address and one
// counterpart. It holds no state across counterparts and never inserts
// messages optimistically: after every send it re-reads the ledger.
//
// Loads are not retried automatically. A view in Error stays there until
// Refresh or Open is called.
type View struct {
	ledger  domain.MessageLedger
	session domain.Session
	blobs   domain.BlobStore
	log     *zap.Logger

	mu          sync.Mutex
	counterpart *domain.Address
	state       State
	messages    []domain.Message
	err         error
	gen         uint64
}

// New returns an Idle view. blobs may be nil; file entries then render
// with unknown metadata.
func New(session domain.Session, ledger domain.MessageLedger, blobs domain.BlobStore, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	return &View{ledger: ledger, session: session, blobs: blobs, log: log}
}

// Open switches to counterpart, discarding whatever was shown before, and
// loads the conversation.
func (v *View) Open(ctx context.Context, counterpart domain.Address) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	cp := counterpart
	v.counterpart = &cp
	v.state = Loading
	v.messages = nil
	v.err = nil
	v.mu.Unlock()

	return v.load(ctx, gen, cp)
}

// Refresh reloads the open conversation. It is the manual retry after an
// Error.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.counterpart == nil {
		v.mu.Unlock()
		return ErrNoCounterpart
	}
	v.gen++
	gen := v.gen
	cp := *v.counterpart
	v.state = Loading
	v.err = nil
	v.mu.Unlock()

	return v.load(ctx, gen, cp)
}

// Close returns the view to Idle.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.counterpart = nil
	v.state = Idle
	v.messages = nil
	v.err = nil
}

// Send appends a message to the open conversation and then re-reads it.
//
// A rejected append leaves the view as it was and returns the error. If the
// append is confirmed but the re-read fails, the receipt is returned and the
// view moves to Error.
func (v *View) Send(ctx context.Context, content string, kind domain.MessageKind) (domain.Receipt, error) {
	v.mu.Lock()
	if v.counterpart == nil {
		v.mu.Unlock()
		return domain.Receipt{}, ErrNoCounterpart
	}
	cp := *v.counterpart
	v.mu.Unlock()

	r, err := v.ledger.Append(ctx, cp, content, kind)
	if err != nil {
		return domain.Receipt{}, err
	}
	if err := v.Refresh(ctx); err != nil {
		v.log.Warn("reload after send failed",
			zap.Stringer("counterpart", cp),
			zap.Uint64("sequence", r.Sequence),
			zap.Error(err),
		)
	}
	return r, nil
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Snapshot{State: v.state, Err: v.err}
	if v.counterpart != nil {
		cp := *v.counterpart
		s.Counterpart = &cp
	}
	if v.messages != nil {
		s.Messages = append([]domain.Message(nil), v.messages...)
	}
	return s
}

// Entries returns the loaded messages prepared for display. Blob metadata
// for file messages is fetched best-effort; failures render as unknown.
func (v *View) Entries(ctx context.Context) []Entry {
	snap := v.Snapshot()
	self, _ := v.session.RequireAddress()

	out := make([]Entry, len(snap.Messages))
	for i, m := range snap.Messages {
		out[i] = Entry{Message: m, Mine: m.Sender == self}
		if m.Kind == domain.KindFile {
			out[i].Blob = v.metadata(ctx, m.Content)
		}
	}
	return out
}

func (v *View) metadata(ctx context.Context, locator string) *domain.BlobMetadata {
	unknown := &domain.BlobMetadata{Locator: locator}
	if v.blobs == nil {
		return unknown
	}
	md, err := v.blobs.Metadata(ctx, locator)
	if err != nil {
		v.log.Debug("blob metadata unavailable", zap.String("locator", locator), zap.Error(err))
		return unknown
	}
	return &md
}

func (v *View) load(ctx context.Context, gen uint64, counterpart domain.Address) error {
	msgs, err := v.ledger.ReadConversation(ctx, counterpart)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		// Superseded by a later Open, Refresh or Close.
		return nil
	}
	if err != nil {
		v.state = Error
		v.err = err
		v.messages = nil
		return err
	}
	v.state = Ready
	v.messages = msgs
	return nil
}
