package message_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cryptocomm/internal/domain"
	"cryptocomm/internal/services/message"
	"cryptocomm/internal/services/registry"
	"cryptocomm/internal/testnet"
)

type countingClient struct {
	domain.LedgerClient
	calls atomic.Int32
}

func (c *countingClient) Submit(ctx context.Context, stx domain.SignedTransaction) (domain.Receipt, error) {
	c.calls.Add(1)
	return c.LedgerClient.Submit(ctx, stx)
}

func (c *countingClient) ReadConversation(ctx context.Context, l, a, b domain.Address) ([]domain.Message, error) {
	c.calls.Add(1)
	return c.LedgerClient.ReadConversation(ctx, l, a, b)
}

type memBlobs struct {
	uploads []string
	fail    bool
}

func (m *memBlobs) Upload(_ context.Context, name string, r io.Reader) (string, error) {
	if m.fail {
		return "", errors.New("upload refused")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.uploads = append(m.uploads, string(b))
	return "https://gateway.example/ipfs/" + name, nil
}

func (m *memBlobs) Metadata(context.Context, string) (domain.BlobMetadata, error) {
	return domain.BlobMetadata{}, domain.ErrBlobUnavailable
}

type party struct {
	*testnet.User
	messages *message.Service
	client   *countingClient
	blobs    *memBlobs
}

func join(t *testing.T, net *testnet.Network, name string) *party {
	u := testnet.NewUser(t, true)
	if name != "" {
		reg := registry.New(u.Session, net.Client, net.Deployment.IdentityRegistry, nil)
		_, err := reg.Register(context.Background(), name)
		require.NoError(t, err)
	}
	c := &countingClient{LedgerClient: net.Client}
	blobs := &memBlobs{}
	return &party{
		User:     u,
		messages: message.New(u.Session, c, net.Deployment.MessageLedger, blobs, zaptest.NewLogger(t)),
		client:   c,
		blobs:    blobs,
	}
}

func TestAppend_Scenario(t *testing.T) {
	net := testnet.Start(t)
	ctx := context.Background()
	a, b := join(t, net, "alice"), join(t, net, "bob")

	_, err := a.messages.SendText(ctx, b.Address, "hello")
	require.NoError(t, err)

	fromA, err := a.messages.ReadConversation(ctx, b.Address)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Equal(t, a.Address, fromA[0].Sender)
	assert.Equal(t, b.Address, fromA[0].Recipient)
	assert.Equal(t, "hello", fromA[0].Content)
	assert.Equal(t, domain.KindText, fromA[0].Kind)

	fromB, err := b.messages.ReadConversation(ctx, a.Address)
	require.NoError(t, err)
	assert.Equal(t, fromA, fromB)
}

func TestReadConversation_EmptyIsNotAnError(t *testing.T) {
	net := testnet.Start(t)
	a, b := join(t, net, "alice"), join(t, net, "bob")

	msgs, err := a.messages.ReadConversation(context.Background(), b.Address)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestAppend_OrderPreserved(t *testing.T) {
	net := testnet.Start(t)
	ctx := context.Background()
	a, b, c := join(t, net, "alice"), join(t, net, "bob"), join(t, net, "carol")

	for _, step := range []struct {
		from *party
		to   domain.Address
		text string
	}{
		{a, b.Address, "m1"},
		{c, a.Address, "noise"},
		{b, a.Address, "m2"},
		{a, c.Address, "noise"},
		{a, b.Address, "m3"},
	} {
		_, err := step.from.messages.SendText(ctx, step.to, step.text)
		require.NoError(t, err)
	}

	msgs, err := b.messages.ReadConversation(ctx, a.Address)
	require.NoError(t, err)
	var got []string
	for i, m := range msgs {
		got = append(got, m.Content)
		if i > 0 {
			assert.Greater(t, m.Sequence, msgs[i-1].Sequence)
			assert.GreaterOrEqual(t, m.Timestamp, msgs[i-1].Timestamp)
		}
	}
	assert.Equal(t, []string{"m1", "m2", "m3"}, got)
}

func TestAppend_UnregisteredRecipient(t *testing.T) {
	net := testnet.Start(t)
	ctx := context.Background()
	a := join(t, net, "alice")
	x := join(t, net, "")

	_, err := a.messages.SendText(ctx, x.Address, "hi")
	assert.ErrorIs(t, err, domain.ErrRecipientNotRegistered)

	report, err := a.messages.Verify(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Entries)
}

func TestAppend_DisconnectedMakesNoCalls(t *testing.T) {
	net := testnet.Start(t)
	ctx := context.Background()
	a, b := join(t, net, "alice"), join(t, net, "bob")
	a.Session.Disconnect()

	_, err := a.messages.SendText(ctx, b.Address, "hi")
	assert.ErrorIs(t, err, domain.ErrNotConnected)
	_, _, err = a.messages.SendFile(ctx, b.Address, "f.txt", strings.NewReader("data"))
	assert.ErrorIs(t, err, domain.ErrNotConnected)
	_, err = a.messages.ReadConversation(ctx, b.Address)
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	assert.Zero(t, a.client.calls.Load())
	assert.Empty(t, a.blobs.uploads)

	report, err := b.messages.Verify(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Entries)
}

func TestAppend_LocalValidation(t *testing.T) {
	net := testnet.Start(t)
	ctx := context.Background()
	a, b := join(t, net, "alice"), join(t, net, "bob")

	_, err := a.messages.SendText(ctx, b.Address, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
	_, err = a.messages.Append(ctx, b.Address, "x", "video")
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
	assert.Zero(t, a.client.calls.Load())
}

func TestSendFile(t *testing.T) {
	net := testnet.Start(t)
	ctx := context.Background()
	a, b := join(t, net, "alice"), join(t, net, "bob")

	_, locator, err := a.messages.SendFile(ctx, b.Address, "notes.txt", strings.NewReader("contents"))
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/ipfs/notes.txt", locator)
	assert.Equal(t, []string{"contents"}, a.blobs.uploads)

	msgs, err := b.messages.ReadConversation(ctx, a.Address)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.KindFile, msgs[0].Kind)
	assert.Equal(t, locator, msgs[0].Content)

	a.blobs.fail = true
	_, _, err = a.messages.SendFile(ctx, b.Address, "x", strings.NewReader("y"))
	require.Error(t, err)
	msgs, err = b.messages.ReadConversation(ctx, a.Address)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "failed upload appends nothing")
}
