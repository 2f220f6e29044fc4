package message

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

// Service is the client view of one message ledger contract.
//
// Writes return only once the node has confirmed them; callers re-read the
// conversation afterwards rather than inserting the message locally.
type Service struct {
	session  domain.Session
	client   domain.LedgerClient
	contract domain.Address
	blobs    domain.BlobStore
	log      *zap.Logger
}

// New returns a ledger facade for the contract at addr. blobs may be nil,
// in which case SendFile fails with ErrBlobUnavailable.
func New(
	session domain.Session,
	client domain.LedgerClient,
	addr domain.Address,
	blobs domain.BlobStore,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{session: session, client: client, contract: addr, blobs: blobs, log: log}
}

var _ domain.MessageLedger = (*Service)(nil)

// Append writes a message from the session address to recipient.
func (s *Service) Append(
	ctx context.Context,
	recipient domain.Address,
	content string,
	kind domain.MessageKind,
) (domain.Receipt, error) {
	if _, err := s.session.RequireAddress(); err != nil {
		return domain.Receipt{}, err
	}
	if strings.TrimSpace(content) == "" {
		return domain.Receipt{}, domain.ErrEmptyContent
	}
	if !kind.Valid() {
		return domain.Receipt{}, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}

	tx, err := crypto.NewTransaction(s.contract, domain.MethodAppend, domain.AppendParams{
		Recipient: recipient,
		Content:   content,
		Kind:      kind,
	})
	if err != nil {
		return domain.Receipt{}, err
	}
	stx, err := s.session.SignTransaction(tx)
	if err != nil {
		return domain.Receipt{}, err
	}
	r, err := s.client.Submit(ctx, stx)
	if err != nil {
		return domain.Receipt{}, err
	}
	s.log.Debug("message appended",
		zap.Stringer("recipient", recipient),
		zap.String("kind", string(kind)),
		zap.Uint64("sequence", r.Sequence),
	)
	return r, nil
}

// SendText appends a text message.
func (s *Service) SendText(ctx context.Context, recipient domain.Address, text string) (domain.Receipt, error) {
	return s.Append(ctx, recipient, text, domain.KindText)
}

// SendFile uploads r to the blob store and appends its locator as a file
// message. Nothing is uploaded while disconnected.
func (s *Service) SendFile(
	ctx context.Context,
	recipient domain.Address,
	name string,
	r io.Reader,
) (domain.Receipt, string, error) {
	if _, err := s.session.RequireAddress(); err != nil {
		return domain.Receipt{}, "", err
	}
	if s.blobs == nil {
		return domain.Receipt{}, "", fmt.Errorf("%w: no blob store configured", domain.ErrBlobUnavailable)
	}
	locator, err := s.blobs.Upload(ctx, name, r)
	if err != nil {
		return domain.Receipt{}, "", err
	}
	receipt, err := s.Append(ctx, recipient, locator, domain.KindFile)
	if err != nil {
		return domain.Receipt{}, locator, err
	}
	return receipt, locator, nil
}

// ReadConversation returns every message between the session address and
// counterpart, oldest first. No messages is an empty slice, not an error.
func (s *Service) ReadConversation(ctx context.Context, counterpart domain.Address) ([]domain.Message, error) {
	self, err := s.session.RequireAddress()
	if err != nil {
		return nil, err
	}
	msgs, err := s.client.ReadConversation(ctx, s.contract, self, counterpart)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// Verify asks the node to walk the ledger's hash chain.
func (s *Service) Verify(ctx context.Context) (domain.ChainReport, error) {
	return s.client.Verify(ctx, s.contract)
}
