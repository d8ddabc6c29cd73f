// Package discovery identifies swap instructions inside decoded
// transactions. It maintains the table of known DEX and router programs
// and turns matching instructions into swap descriptors for the resolver.
package discovery

// Known DEX and router program IDs.
const (
	// RaydiumAMMV4 is the Raydium AMM v4 program ID.
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	// PumpFun is the pump.fun program ID.
	PumpFun = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	// OrcaWhirlpool is the Orca Whirlpool program ID.
	OrcaWhirlpool = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	// MeteoraDLMM is the Meteora DLMM program ID.
	MeteoraDLMM = "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"
	// JupiterV6 is the Jupiter aggregator v6 program ID.
	JupiterV6 = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	// OKXDexRouter is the OKX DEX aggregation router program ID.
	OKXDexRouter = "6m2CDdhRgxpH4WjvdzxAYbGxwdGUz5MziiL5jek2kBma"
)

// SwapLayout maps instruction account positions to swap roles. A negative
// pool index means the program does not name that pool account explicitly;
// the detector then falls back to a candidate set of the instruction's
// remaining accounts.
type SwapLayout struct {
	InstructionName      string
	UserSourceIndex      int
	UserDestinationIndex int
	PoolSourceIndex      int
	PoolDestinationIndex int
}

// DEXProgram describes one known swap program.
type DEXProgram struct {
	Address string
	Name    string
	// Router marks aggregators whose swap legs are executed by nested DEX
	// instructions rather than by the program itself.
	Router bool
	Layout SwapLayout
}

// defaultPrograms is the built-in program table. Account layouts follow
// each program's published instruction layout; only the accounts the
// resolver needs are mapped.
var defaultPrograms = []DEXProgram{
	{
		Address: RaydiumAMMV4,
		Name:    "Raydium AMM v4",
		Layout: SwapLayout{
			InstructionName:      "swapBaseIn",
			UserSourceIndex:      15,
			UserDestinationIndex: 16,
			PoolSourceIndex:      5,
			PoolDestinationIndex: 4,
		},
	},
	{
		Address: PumpFun,
		Name:    "pump.fun",
		Layout: SwapLayout{
			InstructionName:      "buy",
			UserSourceIndex:      6,
			UserDestinationIndex: 5,
			PoolSourceIndex:      -1,
			PoolDestinationIndex: -1,
		},
	},
	{
		Address: OrcaWhirlpool,
		Name:    "Orca Whirlpool",
		Layout: SwapLayout{
			InstructionName:      "swap",
			UserSourceIndex:      3,
			UserDestinationIndex: 5,
			PoolSourceIndex:      6,
			PoolDestinationIndex: 4,
		},
	},
	{
		Address: MeteoraDLMM,
		Name:    "Meteora DLMM",
		Layout: SwapLayout{
			InstructionName:      "swap",
			UserSourceIndex:      4,
			UserDestinationIndex: 5,
			PoolSourceIndex:      -1,
			PoolDestinationIndex: -1,
		},
	},
	{
		Address: JupiterV6,
		Name:    "Jupiter v6",
		Router:  true,
		Layout: SwapLayout{
			InstructionName:      "route",
			UserSourceIndex:      2,
			UserDestinationIndex: 3,
			PoolSourceIndex:      -1,
			PoolDestinationIndex: -1,
		},
	},
	{
		Address: OKXDexRouter,
		Name:    "OKX DEX Router",
		Router:  true,
		Layout: SwapLayout{
			InstructionName:      "swap",
			UserSourceIndex:      1,
			UserDestinationIndex: 2,
			PoolSourceIndex:      -1,
			PoolDestinationIndex: -1,
		},
	},
}
