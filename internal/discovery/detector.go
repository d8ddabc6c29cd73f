package discovery

import (
	"log"

	"solana-graph-lab/internal/domain"
)

// Detector matches instruction program IDs against the known program
// table and maps instruction accounts to swap roles.
type Detector struct {
	programs map[string]DEXProgram
	logger   *log.Logger
}

// DetectorOptions configures a Detector.
type DetectorOptions struct {
	// Extra programs to recognize in addition to the built-in table.
	// An extra program with a built-in address overrides the built-in entry.
	Programs []DEXProgram

	// Logger for skipped instructions. Defaults to log.Default().
	Logger *log.Logger
}

// NewDetector builds a Detector over the built-in program table plus any
// extras from opts.
func NewDetector(opts DetectorOptions) *Detector {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	programs := make(map[string]DEXProgram, len(defaultPrograms)+len(opts.Programs))
	for _, p := range defaultPrograms {
		programs[p.Address] = p
	}
	for _, p := range opts.Programs {
		programs[p.Address] = p
	}

	return &Detector{programs: programs, logger: logger}
}

// Lookup returns the program table entry for a program address.
func (d *Detector) Lookup(programAddress string) (DEXProgram, bool) {
	p, ok := d.programs[programAddress]
	return p, ok
}

// DescribeSwap maps an instruction's account list onto swap roles using
// the program's layout. It returns false when the account list is too
// short for the layout, in which case the instruction is skipped.
//
// Router programs get nil pools: their legs are resolved from nested
// swaps, not from pool accounts of their own.
func (d *Detector) DescribeSwap(prog DEXProgram, accounts []string) (domain.AccountPair, domain.PoolAddresses, bool) {
	layout := prog.Layout
	if layout.UserSourceIndex >= len(accounts) || layout.UserDestinationIndex >= len(accounts) {
		d.logger.Printf("discovery: %s instruction has %d accounts, need at least %d, skipping",
			prog.Name, len(accounts), max(layout.UserSourceIndex, layout.UserDestinationIndex)+1)
		return domain.AccountPair{}, nil, false
	}

	user := domain.AccountPair{
		Source:      accounts[layout.UserSourceIndex],
		Destination: accounts[layout.UserDestinationIndex],
	}

	if prog.Router {
		return user, nil, true
	}

	if layout.PoolSourceIndex >= 0 && layout.PoolDestinationIndex >= 0 {
		if layout.PoolSourceIndex >= len(accounts) || layout.PoolDestinationIndex >= len(accounts) {
			d.logger.Printf("discovery: %s instruction has %d accounts, pool indexes out of range, skipping",
				prog.Name, len(accounts))
			return domain.AccountPair{}, nil, false
		}
		return user, domain.PairedPools{
			Source:      accounts[layout.PoolSourceIndex],
			Destination: accounts[layout.PoolDestinationIndex],
		}, true
	}

	// No fixed pool positions: every account that is not a user account is
	// a pool candidate. The resolver narrows the set by path existence.
	candidates := make(domain.CandidatePools, 0, len(accounts))
	seen := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		if a == user.Source || a == user.Destination || a == prog.Address {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		candidates = append(candidates, a)
	}
	return user, candidates, true
}
