package graph

// TransferType classifies an edge in the transaction graph.
type TransferType string

// Edge types. The SWAP* types are synthetic: they are inserted by the
// resolver, never produced by instruction decoding.
const (
	TypeTransfer        TransferType = "TRANSFER"
	TypeTransferChecked TransferType = "TRANSFERCHECKED"
	TypeCreateAccount   TransferType = "CREATEACCOUNT"
	TypeCloseAccount    TransferType = "CLOSEACCOUNT"
	TypeBurn            TransferType = "BURN"
	TypeMintTo          TransferType = "MINTTO"
	TypeNativeSOL       TransferType = "NATIVE_SOL"
	TypeFee             TransferType = "FEE"
	TypePriorityFee     TransferType = "PRIORITYFEE"
	TypeSwap            TransferType = "SWAP"
	TypeSwapIncoming    TransferType = "SWAP_INCOMING"
	TypeSwapOutgoing    TransferType = "SWAP_OUTGOING"
	TypeRouterIncoming  TransferType = "SWAP_ROUTER_INCOMING"
	TypeRouterOutgoing  TransferType = "SWAP_ROUTER_OUTGOING"
)

// TransferProperties is the payload carried by every edge.
// Amounts are in the token's smallest unit. The swap back-references are
// nil for transfers that do not belong to any swap.
type TransferProperties struct {
	Type               TransferType
	ProgramAddress     string
	AmountSource       int64
	AmountDestination  int64
	SwapID             *int64
	SwapParentID       *int64
	ParentRouterSwapID *int64
}

// BelongsToSwap reports whether the edge lies inside the instruction span
// of the given swap: either it is tagged with the swap as its direct
// parent, or it was produced under a nested swap of that router.
func (p TransferProperties) BelongsToSwap(swapID int64) bool {
	if p.SwapParentID != nil && *p.SwapParentID == swapID {
		return true
	}
	if p.ParentRouterSwapID != nil && *p.ParentRouterSwapID == swapID {
		return true
	}
	return false
}

// Edge is one keyed transfer between two account snapshots.
type Edge struct {
	Source AccountVertex
	Target AccountVertex
	Key    int64
	Props  TransferProperties
}
