package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cryptocomm/internal/crypto"
	"cryptocomm/internal/domain"
)

const testNetwork domain.NetworkID = 1337

type fixture struct {
	t        *testing.T
	dir      string
	ledger   *Ledger
	clock    *ManualClock
	deployer *ecdsa.PrivateKey
	registry domain.Address
	messages domain.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		dir:   t.TempDir(),
		clock: NewManualClock(time.Unix(1_700_000_000, 0)),
	}
	f.open()
	t.Cleanup(func() { f.ledger.Close() })

	f.deployer = newKey(t)
	reg := f.apply(f.deployer, domain.Address{}, domain.MethodDeploy,
		domain.DeployParams{Kind: domain.ContractIdentityRegistry})
	f.registry = reg.Contract
	msgs := f.apply(f.deployer, domain.Address{}, domain.MethodDeploy,
		domain.DeployParams{Kind: domain.ContractMessageLedger, Registry: &f.registry})
	f.messages = msgs.Contract
	return f
}

func (f *fixture) open() {
	l, err := Open(f.dir, Options{Network: testNetwork, Clock: f.clock, Logger: zaptest.NewLogger(f.t)})
	require.NoError(f.t, err)
	f.ledger = l
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func sign(t *testing.T, key *ecdsa.PrivateKey, contract domain.Address, method string, params any) domain.SignedTransaction {
	t.Helper()
	tx, err := crypto.NewTransaction(contract, method, params)
	require.NoError(t, err)
	tx.Network = testNetwork
	stx, err := crypto.SignTransaction(key, tx)
	require.NoError(t, err)
	return stx
}

func (f *fixture) submit(key *ecdsa.PrivateKey, contract domain.Address, method string, params any) (domain.Receipt, error) {
	return f.ledger.Apply(context.Background(), sign(f.t, key, contract, method, params))
}

func (f *fixture) apply(key *ecdsa.PrivateKey, contract domain.Address, method string, params any) domain.Receipt {
	f.t.Helper()
	r, err := f.submit(key, contract, method, params)
	require.NoError(f.t, err)
	return r
}

func (f *fixture) register(key *ecdsa.PrivateKey, name string) domain.Address {
	f.t.Helper()
	f.apply(key, f.registry, domain.MethodRegister, domain.RegisterParams{Username: domain.Username(name)})
	return crypto.AddressOf(key)
}

func (f *fixture) send(key *ecdsa.PrivateKey, to domain.Address, content string) domain.Receipt {
	f.t.Helper()
	return f.apply(key, f.messages, domain.MethodAppend,
		domain.AppendParams{Recipient: to, Content: content, Kind: domain.KindText})
}

func TestDeploy_DerivesAddressesFromNonce(t *testing.T) {
	f := newFixture(t)
	deployer := crypto.AddressOf(f.deployer)

	assert.Equal(t, crypto.ContractAddress(deployer, 0), f.registry)
	assert.Equal(t, crypto.ContractAddress(deployer, 1), f.messages)

	ct, err := f.ledger.Contract(f.messages)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractMessageLedger, ct.Kind)
	require.NotNil(t, ct.Registry)
	assert.Equal(t, f.registry, *ct.Registry)
}

func TestDeploy_LedgerNeedsRegistry(t *testing.T) {
	f := newFixture(t)
	bogus := crypto.AddressOf(newKey(t))

	_, err := f.submit(f.deployer, domain.Address{}, domain.MethodDeploy,
		domain.DeployParams{Kind: domain.ContractMessageLedger, Registry: &bogus})
	assert.ErrorIs(t, err, domain.ErrUnknownContract)

	_, err = f.submit(f.deployer, domain.Address{}, domain.MethodDeploy,
		domain.DeployParams{Kind: domain.ContractMessageLedger, Registry: &f.messages})
	assert.ErrorIs(t, err, domain.ErrUnknownContract)
}

func TestRegister_AndLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(newKey(t), "alice")

	ok, err := f.ledger.Exists(ctx, f.registry, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	id, err := f.ledger.Lookup(ctx, f.registry, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.Username("alice"), id.Username)
	assert.Empty(t, id.Friends)

	addr, found, err := f.ledger.ResolveUsername(ctx, f.registry, "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, alice, addr)

	_, found, err = f.ledger.ResolveUsername(ctx, f.registry, "Alice")
	require.NoError(t, err)
	assert.False(t, found, "usernames are case-sensitive")
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceKey := newKey(t)
	alice := f.register(aliceKey, "alice")

	_, err := f.submit(aliceKey, f.registry, domain.MethodRegister, domain.RegisterParams{Username: "alice2"})
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	bobKey := newKey(t)
	_, err = f.submit(bobKey, f.registry, domain.MethodRegister, domain.RegisterParams{Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = f.submit(bobKey, f.registry, domain.MethodRegister, domain.RegisterParams{Username: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)

	id, err := f.ledger.Lookup(ctx, f.registry, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.Username("alice"), id.Username)

	ok, err := f.ledger.Exists(ctx, f.registry, crypto.AddressOf(bobKey))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookup_Unregistered(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Lookup(context.Background(), f.registry, crypto.AddressOf(newKey(t)))
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestAddFriend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceKey, bobKey, carolKey := newKey(t), newKey(t), newKey(t)
	alice := f.register(aliceKey, "alice")
	bob := f.register(bobKey, "bob")
	carol := f.register(carolKey, "carol")

	f.apply(aliceKey, f.registry, domain.MethodAddFriend, domain.AddFriendParams{Friend: bob})
	f.apply(aliceKey, f.registry, domain.MethodAddFriend, domain.AddFriendParams{Friend: carol})

	id, err := f.ledger.Lookup(ctx, f.registry, alice)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{bob, carol}, id.Friends)

	bobID, err := f.ledger.Lookup(ctx, f.registry, bob)
	require.NoError(t, err)
	assert.Empty(t, bobID.Friends, "friendship is one-directional")

	_, err = f.submit(aliceKey, f.registry, domain.MethodAddFriend, domain.AddFriendParams{Friend: bob})
	assert.ErrorIs(t, err, domain.ErrAlreadyFriends)

	_, err = f.submit(aliceKey, f.registry, domain.MethodAddFriend, domain.AddFriendParams{Friend: alice})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	stranger := crypto.AddressOf(newKey(t))
	_, err = f.submit(aliceKey, f.registry, domain.MethodAddFriend, domain.AddFriendParams{Friend: stranger})
	assert.ErrorIs(t, err, domain.ErrTargetNotRegistered)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)

	_, err = f.submit(newKey(t), f.registry, domain.MethodAddFriend, domain.AddFriendParams{Friend: bob})
	assert.ErrorIs(t, err, domain.ErrSelfNotRegistered)

	id, err = f.ledger.Lookup(ctx, f.registry, alice)
	require.NoError(t, err)
	assert.Len(t, id.Friends, 2)
}

func TestAppend_ConversationOrder(t *testing.T) {
	f := newFixture(t)
	aliceKey, bobKey, carolKey := newKey(t), newKey(t), newKey(t)
	alice := f.register(aliceKey, "alice")
	bob := f.register(bobKey, "bob")
	carol := f.register(carolKey, "carol")

	r1 := f.send(aliceKey, bob, "hi bob")
	f.clock.Advance(time.Second)
	f.send(carolKey, alice, "unrelated")
	f.clock.Advance(-time.Hour)
	r3 := f.send(bobKey, alice, "hi alice")

	assert.Less(t, r1.Sequence, r3.Sequence)
	assert.GreaterOrEqual(t, r3.Timestamp, r1.Timestamp, "timestamps never decrease")

	got, err := f.ledger.Conversation(f.messages, alice, bob)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hi bob", got[0].Content)
	assert.Equal(t, alice, got[0].Sender)
	assert.Equal(t, "hi alice", got[1].Content)
	assert.Equal(t, bob, got[1].Sender)

	rev, err := f.ledger.Conversation(f.messages, bob, alice)
	require.NoError(t, err)
	assert.Equal(t, got, rev)

	none, err := f.ledger.Conversation(f.messages, bob, carol)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAppend_Rejections(t *testing.T) {
	f := newFixture(t)
	aliceKey := newKey(t)
	f.register(aliceKey, "alice")
	bob := f.register(newKey(t), "bob")

	_, err := f.submit(aliceKey, f.messages, domain.MethodAppend, domain.AppendParams{Recipient: bob, Content: " \n", Kind: domain.KindText})
	assert.ErrorIs(t, err, domain.ErrEmptyContent)

	_, err = f.submit(aliceKey, f.messages, domain.MethodAppend, domain.AppendParams{Recipient: bob, Content: "x", Kind: "video"})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)

	_, err = f.submit(aliceKey, f.messages, domain.MethodAppend, domain.AppendParams{Recipient: crypto.AddressOf(newKey(t)), Content: "x"})
	assert.ErrorIs(t, err, domain.ErrRecipientNotRegistered)

	_, err = f.submit(newKey(t), f.messages, domain.MethodAppend, domain.AppendParams{Recipient: bob, Content: "x"})
	assert.ErrorIs(t, err, domain.ErrSelfNotRegistered)

	_, err = f.submit(aliceKey, f.registry, domain.MethodAppend, domain.AppendParams{Recipient: bob, Content: "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownContract)

	report, err := f.ledger.Verify(f.messages)
	require.NoError(t, err)
	assert.Zero(t, report.Entries)
}

func TestApply_TransactionChecks(t *testing.T) {
	f := newFixture(t)
	key := newKey(t)

	stx := sign(t, key, f.registry, domain.MethodRegister, domain.RegisterParams{Username: "alice"})
	_, err := f.ledger.Apply(context.Background(), stx)
	require.NoError(t, err)
	_, err = f.ledger.Apply(context.Background(), stx)
	assert.ErrorIs(t, err, domain.ErrReplayedTransaction)

	forged := sign(t, newKey(t), f.registry, domain.MethodRegister, domain.RegisterParams{Username: "mallory"})
	forged.Tx.Params = json.RawMessage(`{"username":"eve"}`)
	_, err = f.ledger.Apply(context.Background(), forged)
	assert.ErrorIs(t, err, domain.ErrBadSignature)

	tx, err := crypto.NewTransaction(f.registry, domain.MethodRegister, domain.RegisterParams{Username: "bob"})
	require.NoError(t, err)
	tx.Network = testNetwork + 1
	wrongNet, err := crypto.SignTransaction(newKey(t), tx)
	require.NoError(t, err)
	_, err = f.ledger.Apply(context.Background(), wrongNet)
	assert.ErrorIs(t, err, domain.ErrNetworkMismatch)

	_, err = f.submit(key, f.registry, "transfer", struct{}{})
	assert.ErrorIs(t, err, domain.ErrUnknownMethod)

	_, err = f.submit(key, f.registry, domain.MethodRegister, []int{1, 2})
	assert.ErrorIs(t, err, domain.ErrMalformedParams)
	assert.NotErrorIs(t, err, domain.ErrUnknownMethod)
	assert.Equal(t, "malformed_params", domain.ErrorCode(err))
}

func TestVerify_DetectsTampering(t *testing.T) {
	f := newFixture(t)
	aliceKey := newKey(t)
	f.register(aliceKey, "alice")
	bob := f.register(newKey(t), "bob")
	f.send(aliceKey, bob, "one")
	f.send(aliceKey, bob, "two")
	f.send(aliceKey, bob, "three")

	report, err := f.ledger.Verify(f.messages)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), report.Entries)

	key := messageKey(f.messages, 2)
	raw, err := f.ledger.db.Get(key, nil)
	require.NoError(t, err)
	var m domain.Message
	require.NoError(t, json.Unmarshal(raw, &m))
	m.Content = "TWO"
	raw, err = json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, f.ledger.db.Put(key, raw, nil))

	_, err = f.ledger.Verify(f.messages)
	assert.ErrorIs(t, err, domain.ErrLedgerTampered)
}

func TestLedger_PersistsAcrossReopen(t *testing.T) {
	f := newFixture(t)
	aliceKey := newKey(t)
	alice := f.register(aliceKey, "alice")
	bob := f.register(newKey(t), "bob")
	f.apply(aliceKey, f.registry, domain.MethodAddFriend, domain.AddFriendParams{Friend: bob})
	f.send(aliceKey, bob, "persisted")

	require.NoError(t, f.ledger.Close())
	f.open()

	id, err := f.ledger.Lookup(context.Background(), f.registry, alice)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{bob}, id.Friends)

	msgs, err := f.ledger.Conversation(f.messages, alice, bob)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "persisted", msgs[0].Content)

	r := f.send(aliceKey, bob, "after reopen")
	assert.Equal(t, uint64(2), r.Sequence)
}
