package solana

import (
	"context"
	"encoding/json"
)

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetParsedTransaction retrieves a transaction by signature with
	// jsonParsed encoding. Returns nil when the transaction is not found.
	GetParsedTransaction(ctx context.Context, signature string) (*ParsedTransaction, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)
}

// ParsedTransaction is a transaction in jsonParsed encoding. Instruction
// payloads for programs the RPC node knows how to decode carry a typed
// parsed object; everything else keeps raw base58 data.
type ParsedTransaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *ParsedMeta
	Message   *ParsedMessage
}

// ParsedMeta contains transaction metadata.
type ParsedMeta struct {
	Err                  interface{}
	Fee                  uint64
	ComputeUnitsConsumed uint64
	LogMessages          []string
	InnerInstructions    []InnerInstructionSet
}

// InnerInstructionSet groups the CPI instructions invoked by one
// top-level instruction, identified by its index in the message.
type InnerInstructionSet struct {
	Index        int
	Instructions []ParsedInstruction
}

// ParsedMessage contains the decoded transaction message.
type ParsedMessage struct {
	AccountKeys  []AccountKey
	Instructions []ParsedInstruction
}

// FeePayer returns the first account key, which pays the transaction fee.
func (m *ParsedMessage) FeePayer() string {
	if m == nil || len(m.AccountKeys) == 0 {
		return ""
	}
	return m.AccountKeys[0].Pubkey
}

// AccountKey is one entry of the message account list.
type AccountKey struct {
	Pubkey   string `json:"pubkey"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
}

// ParsedInstruction is one instruction in jsonParsed encoding.
type ParsedInstruction struct {
	Program   string          `json:"program"`
	ProgramID string          `json:"programId"`
	Accounts  []string        `json:"accounts"`
	Data      string          `json:"data"`
	Parsed    json.RawMessage `json:"parsed"`
}

// ParsedPayload is the typed payload the RPC node attaches to
// instructions of programs it can decode (spl-token, system).
type ParsedPayload struct {
	Type string            `json:"type"`
	Info ParsedPayloadInfo `json:"info"`
}

// ParsedPayloadInfo is the union of fields used by the instruction types
// this module consumes. Unused fields stay zero.
type ParsedPayloadInfo struct {
	Source      string       `json:"source"`
	Destination string       `json:"destination"`
	Account     string       `json:"account"`
	NewAccount  string       `json:"newAccount"`
	Authority   string       `json:"authority"`
	Owner       string       `json:"owner"`
	Mint        string       `json:"mint"`
	Amount      string       `json:"amount"`
	Lamports    uint64       `json:"lamports"`
	TokenAmount *TokenAmount `json:"tokenAmount"`
}

// TokenAmount is the amount object of transferChecked instructions.
type TokenAmount struct {
	Amount   string `json:"amount"`
	Decimals int    `json:"decimals"`
}

// Payload decodes the typed payload of a parsed instruction. It returns
// false for instructions the RPC node left undecoded.
func (in *ParsedInstruction) Payload() (*ParsedPayload, bool) {
	if len(in.Parsed) == 0 {
		return nil, false
	}
	var p ParsedPayload
	if err := json.Unmarshal(in.Parsed, &p); err != nil || p.Type == "" {
		return nil, false
	}
	return &p, true
}
