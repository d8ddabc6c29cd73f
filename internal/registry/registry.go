// Package registry tracks per-address account state discovered while
// parsing a transaction: metadata, pool membership and the versioned
// snapshots that become graph vertices.
package registry

import (
	"sync"

	"solana-graph-lab/internal/graph"
)

// AccountType classifies an account record.
type AccountType string

const (
	AccountUnknown      AccountType = "UNKNOWN"
	AccountWallet       AccountType = "WALLET"
	AccountTokenAccount AccountType = "TOKEN_ACCOUNT"
	AccountMint         AccountType = "MINT"
	AccountProgram      AccountType = "PROGRAM"
)

// Account holds mutable per-address metadata shared by all versions of the
// account within a transaction.
type Account struct {
	Address     string
	MintAddress string
	Type        AccountType
	Owner       string
	Authorities []string

	// IsPool is set once the address is identified as a liquidity
	// counterparty. It is never cleared.
	IsPool bool
}

// AccountVersion is one balance snapshot of an account. Its vertex is the
// graph node representing the account at this point of the transaction.
type AccountVersion struct {
	Version        int
	Account        *Account
	BalanceToken   int64
	BalanceLamport int64
}

// Vertex returns the graph node for this snapshot.
func (v *AccountVersion) Vertex() graph.AccountVertex {
	return graph.AccountVertex{Address: v.Account.Address, Version: v.Version}
}

// ApplyTokenDebit subtracts from the token balance.
func (v *AccountVersion) ApplyTokenDebit(amount int64) { v.BalanceToken -= amount }

// ApplyTokenCredit adds to the token balance.
func (v *AccountVersion) ApplyTokenCredit(amount int64) { v.BalanceToken += amount }

// ApplyLamportDebit subtracts from the lamport balance.
func (v *AccountVersion) ApplyLamportDebit(amount int64) { v.BalanceLamport -= amount }

// ApplyLamportCredit adds to the lamport balance.
func (v *AccountVersion) ApplyLamportCredit(amount int64) { v.BalanceLamport += amount }

// Registry is the per-transaction account store. The pool flag is the one
// piece of state reached from inside the resolver, so all access is
// mutex-guarded; every write to it is an idempotent set-to-true.
type Registry struct {
	mu              sync.RWMutex
	accounts        map[string]*Account
	versions        map[string][]*AccountVersion
	programAccounts map[string]*ProgramAccount
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		accounts:        make(map[string]*Account),
		versions:        make(map[string][]*AccountVersion),
		programAccounts: make(map[string]*ProgramAccount),
	}
}

// GetAccount returns the account record for the address, or nil.
func (r *Registry) GetAccount(address string) *Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.accounts[address]
}

// CreateAccount creates an account and its initial version. Returns nil if
// the address is already registered.
func (r *Registry) CreateAccount(address, mintAddress string, accountType AccountType, owner string, balanceToken, balanceLamport int64) *AccountVersion {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[address]; exists {
		return nil
	}

	account := &Account{
		Address:     address,
		MintAddress: mintAddress,
		Type:        accountType,
		Owner:       owner,
	}
	r.accounts[address] = account

	initial := &AccountVersion{
		Version:        0,
		Account:        account,
		BalanceToken:   balanceToken,
		BalanceLamport: balanceLamport,
	}
	r.versions[address] = []*AccountVersion{initial}
	return initial
}

// LatestVersion returns the most recent snapshot of the account, or nil.
func (r *Registry) LatestVersion(address string) *AccountVersion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := r.versions[address]
	if len(versions) == 0 {
		return nil
	}
	return versions[len(versions)-1]
}

// Versions returns all snapshots of the account in version order.
func (r *Registry) Versions(address string) []*AccountVersion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions[address]
}

// GetVersion returns the snapshot with the given version index, or nil.
func (r *Registry) GetVersion(address string, version int) *AccountVersion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := r.versions[address]
	if version < 0 || version >= len(versions) {
		return nil
	}
	return versions[version]
}

// NewVersion clones the latest snapshot of the account with a bumped
// version index. Returns nil if the account is unknown.
func (r *Registry) NewVersion(address string) *AccountVersion {
	r.mu.Lock()
	defer r.mu.Unlock()

	versions := r.versions[address]
	if len(versions) == 0 {
		return nil
	}
	latest := versions[len(versions)-1]
	next := &AccountVersion{
		Version:        latest.Version + 1,
		Account:        latest.Account,
		BalanceToken:   latest.BalanceToken,
		BalanceLamport: latest.BalanceLamport,
	}
	r.versions[address] = append(versions, next)
	return next
}

// MarkPool flags the address as a liquidity pool, creating the account
// record if it was never registered. Safe to call repeatedly.
func (r *Registry) MarkPool(address string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[address]
	if !ok {
		account = &Account{Address: address, Type: AccountUnknown}
		r.accounts[address] = account
	}
	account.IsPool = true
}

// IsPool reports whether the address has been flagged as a pool.
func (r *Registry) IsPool(address string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account := r.accounts[address]
	return account != nil && account.IsPool
}

// UpdateOwnerInAllVersions backfills the owner on an account whose owner
// was unknown when first seen.
func (r *Registry) UpdateOwnerInAllVersions(address, owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[address]
	if !ok || owner == "" {
		return false
	}
	if account.Owner == "" || account.Owner != owner {
		account.Owner = owner
		return true
	}
	return false
}

// AddAuthority records an authority over the account, deduplicated.
func (r *Registry) AddAuthority(address, authority string) bool {
	if authority == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[address]
	if !ok {
		return false
	}
	for _, a := range account.Authorities {
		if a == authority {
			return false
		}
	}
	account.Authorities = append(account.Authorities, authority)
	return true
}

// AllAccounts returns every registered account record.
func (r *Registry) AllAccounts() []*Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out
}
