package discovery

import (
	"io"
	"log"
	"testing"

	"solana-graph-lab/internal/domain"
)

func newTestDetector(extra ...DEXProgram) *Detector {
	return NewDetector(DetectorOptions{
		Programs: extra,
		Logger:   log.New(io.Discard, "", 0),
	})
}

func TestLookup_BuiltinTable(t *testing.T) {
	d := newTestDetector()

	prog, ok := d.Lookup(RaydiumAMMV4)
	if !ok {
		t.Fatal("Raydium not found in builtin table")
	}
	if prog.Router {
		t.Error("Raydium must not be a router")
	}
	if prog.Layout.InstructionName != "swapBaseIn" {
		t.Errorf("instruction = %s, want swapBaseIn", prog.Layout.InstructionName)
	}

	jupiter, ok := d.Lookup(JupiterV6)
	if !ok || !jupiter.Router {
		t.Error("Jupiter must be a known router")
	}

	if _, ok := d.Lookup("UnknownProgram"); ok {
		t.Error("unknown program reported as known")
	}
}

func TestLookup_ExtraProgramOverrides(t *testing.T) {
	override := DEXProgram{
		Address: PumpFun,
		Name:    "pump.fun patched",
		Layout:  SwapLayout{InstructionName: "buy", UserSourceIndex: 0, UserDestinationIndex: 1, PoolSourceIndex: -1, PoolDestinationIndex: -1},
	}
	d := newTestDetector(override)

	prog, ok := d.Lookup(PumpFun)
	if !ok || prog.Name != "pump.fun patched" {
		t.Errorf("override not applied: %+v", prog)
	}
}

func TestDescribeSwap_PairedLayout(t *testing.T) {
	d := newTestDetector(DEXProgram{
		Address: "Prog",
		Name:    "Paired DEX",
		Layout: SwapLayout{
			InstructionName:      "swap",
			UserSourceIndex:      0,
			UserDestinationIndex: 1,
			PoolSourceIndex:      2,
			PoolDestinationIndex: 3,
		},
	})
	prog, _ := d.Lookup("Prog")

	user, pools, ok := d.DescribeSwap(prog, []string{"us", "ud", "ps", "pd"})
	if !ok {
		t.Fatal("DescribeSwap failed")
	}
	if user.Source != "us" || user.Destination != "ud" {
		t.Errorf("user = %+v", user)
	}

	paired, isPaired := pools.(domain.PairedPools)
	if !isPaired {
		t.Fatalf("pools = %T, want PairedPools", pools)
	}
	if paired.Source != "ps" || paired.Destination != "pd" {
		t.Errorf("pools = %+v", paired)
	}
}

func TestDescribeSwap_CandidateFallback(t *testing.T) {
	d := newTestDetector(DEXProgram{
		Address: "Prog",
		Name:    "Candidate DEX",
		Layout: SwapLayout{
			InstructionName:      "buy",
			UserSourceIndex:      0,
			UserDestinationIndex: 1,
			PoolSourceIndex:      -1,
			PoolDestinationIndex: -1,
		},
	})
	prog, _ := d.Lookup("Prog")

	// User accounts, the program itself and a duplicate are all excluded.
	_, pools, ok := d.DescribeSwap(prog, []string{"us", "ud", "p1", "Prog", "p2", "p1"})
	if !ok {
		t.Fatal("DescribeSwap failed")
	}

	candidates, isCandidates := pools.(domain.CandidatePools)
	if !isCandidates {
		t.Fatalf("pools = %T, want CandidatePools", pools)
	}
	if len(candidates) != 2 || !candidates.Contains("p1") || !candidates.Contains("p2") {
		t.Errorf("candidates = %v, want {p1, p2}", candidates)
	}
}

func TestDescribeSwap_Router(t *testing.T) {
	d := newTestDetector()
	prog, _ := d.Lookup(JupiterV6)

	user, pools, ok := d.DescribeSwap(prog, []string{"a", "b", "us", "ud", "extra"})
	if !ok {
		t.Fatal("DescribeSwap failed")
	}
	if user.Source != "us" || user.Destination != "ud" {
		t.Errorf("user = %+v", user)
	}
	if pools != nil {
		t.Errorf("router pools = %v, want nil", pools)
	}
}

func TestDescribeSwap_ShortAccountList(t *testing.T) {
	d := newTestDetector()
	prog, _ := d.Lookup(RaydiumAMMV4)

	// Raydium's layout needs at least 17 accounts.
	if _, _, ok := d.DescribeSwap(prog, []string{"a", "b", "c"}); ok {
		t.Error("short account list must be rejected")
	}
}
