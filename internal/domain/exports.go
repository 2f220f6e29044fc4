package domain

import (
	interfaces "cryptocomm/internal/domain/interfaces"
	types "cryptocomm/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address           = types.Address
	Hash              = types.Hash
	Username          = types.Username
	NetworkID         = types.NetworkID
	TxID              = types.TxID
	Fingerprint       = types.Fingerprint
	Identity          = types.Identity
	Friend            = types.Friend
	MessageKind       = types.MessageKind
	Message           = types.Message
	BlobMetadata      = types.BlobMetadata
	Transaction       = types.Transaction
	SignedTransaction = types.SignedTransaction
	Receipt           = types.Receipt
	RegisterParams    = types.RegisterParams
	AddFriendParams   = types.AddFriendParams
	AppendParams      = types.AppendParams
	DeployParams      = types.DeployParams
	ContractKind      = types.ContractKind
	Contract          = types.Contract
	Deployment        = types.Deployment
	ChainReport       = types.ChainReport
	AgentEventType    = types.AgentEventType
	AgentEvent        = types.AgentEvent
	SessionState      = types.SessionState
	AgentState        = types.AgentState
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	SigningAgent     = interfaces.SigningAgent
	LedgerClient     = interfaces.LedgerClient
	Session          = interfaces.Session
	IdentityRegistry = interfaces.IdentityRegistry
	MessageLedger    = interfaces.MessageLedger
	BlobStore        = interfaces.BlobStore
	KeyStore         = interfaces.KeyStore
	AgentStateStore  = interfaces.AgentStateStore
	DeploymentStore  = interfaces.DeploymentStore
)

// Constants re-exported from the types subpackage.
const (
	KindText = types.KindText
	KindFile = types.KindFile

	ContractIdentityRegistry = types.ContractIdentityRegistry
	ContractMessageLedger    = types.ContractMessageLedger

	MethodDeploy    = types.MethodDeploy
	MethodRegister  = types.MethodRegister
	MethodAddFriend = types.MethodAddFriend
	MethodAppend    = types.MethodAppend

	AccountChanged = types.AccountChanged
	NetworkChanged = types.NetworkChanged
)

// Helpers re-exported from the types subpackage.
var (
	NormalizeUsername = types.NormalizeUsername
	ParseMessageKind  = types.ParseMessageKind
	ShortAddress      = types.ShortAddress
)
