package registry

import (
	"testing"

	"solana-graph-lab/internal/graph"
)

func TestCreateAccount_InitialVersion(t *testing.T) {
	r := New()

	v := r.CreateAccount("addr1", "mint1", AccountTokenAccount, "owner1", 500, 0)
	if v == nil {
		t.Fatal("CreateAccount returned nil")
	}
	if v.Version != 0 {
		t.Errorf("initial version = %d, want 0", v.Version)
	}
	if v.BalanceToken != 500 {
		t.Errorf("initial balance = %d, want 500", v.BalanceToken)
	}

	if r.CreateAccount("addr1", "", AccountUnknown, "", 0, 0) != nil {
		t.Error("second CreateAccount for same address must return nil")
	}

	account := r.GetAccount("addr1")
	if account == nil || account.MintAddress != "mint1" {
		t.Errorf("GetAccount = %+v, want mint1 preserved", account)
	}
}

func TestNewVersion_ClonesBalances(t *testing.T) {
	r := New()
	r.CreateAccount("addr1", "", AccountTokenAccount, "", 100, 0)

	v1 := r.NewVersion("addr1")
	if v1 == nil || v1.Version != 1 {
		t.Fatalf("NewVersion = %+v, want version 1", v1)
	}
	if v1.BalanceToken != 100 {
		t.Errorf("cloned balance = %d, want 100", v1.BalanceToken)
	}

	v1.ApplyTokenDebit(30)
	if v1.BalanceToken != 70 {
		t.Errorf("debited balance = %d, want 70", v1.BalanceToken)
	}

	// The previous snapshot is untouched.
	if v0 := r.GetVersion("addr1", 0); v0.BalanceToken != 100 {
		t.Errorf("version 0 balance = %d, want 100", v0.BalanceToken)
	}

	if latest := r.LatestVersion("addr1"); latest.Version != 1 {
		t.Errorf("latest version = %d, want 1", latest.Version)
	}

	if r.NewVersion("unknown") != nil {
		t.Error("NewVersion for unknown address must return nil")
	}
}

func TestVersions_Ordering(t *testing.T) {
	r := New()
	r.CreateAccount("addr1", "", AccountUnknown, "", 0, 0)
	r.NewVersion("addr1")
	r.NewVersion("addr1")

	versions := r.Versions("addr1")
	if len(versions) != 3 {
		t.Fatalf("len(versions) = %d, want 3", len(versions))
	}
	for i, v := range versions {
		if v.Version != i {
			t.Errorf("versions[%d].Version = %d, want %d", i, v.Version, i)
		}
	}

	if r.GetVersion("addr1", 5) != nil {
		t.Error("out-of-range version must return nil")
	}
}

func TestMarkPool(t *testing.T) {
	r := New()

	// Marking an unregistered address creates the record.
	r.MarkPool("pool1")
	if !r.IsPool("pool1") {
		t.Error("pool1 not flagged")
	}

	// Idempotent.
	r.MarkPool("pool1")
	if !r.IsPool("pool1") {
		t.Error("repeated MarkPool cleared the flag")
	}

	// Marking an existing account preserves its metadata.
	r.CreateAccount("pool2", "mint2", AccountTokenAccount, "owner2", 0, 0)
	r.MarkPool("pool2")
	account := r.GetAccount("pool2")
	if !account.IsPool || account.MintAddress != "mint2" {
		t.Errorf("account = %+v, want pool flag with metadata intact", account)
	}

	if r.IsPool("never-seen") {
		t.Error("unmarked address reported as pool")
	}
}

func TestPrepareSwapProgramAccount(t *testing.T) {
	r := New()
	g := graph.NewTransactionGraph()

	pa1, err := r.PrepareSwapProgramAccount(g, "ProgAddr")
	if err != nil {
		t.Fatalf("PrepareSwapProgramAccount: %v", err)
	}
	if pa1.Vertex().Address != "ProgAddr" || pa1.Vertex().Version != 0 {
		t.Errorf("vertex = %v, want ProgAddr.0", pa1.Vertex())
	}
	if !g.HasNode(pa1.Vertex()) {
		t.Error("program vertex not registered in graph")
	}

	// Repeat calls return the same vertex.
	pa2, err := r.PrepareSwapProgramAccount(g, "ProgAddr")
	if err != nil {
		t.Fatalf("PrepareSwapProgramAccount (2): %v", err)
	}
	if pa1.Vertex() != pa2.Vertex() {
		t.Errorf("vertices differ: %v vs %v", pa1.Vertex(), pa2.Vertex())
	}

	if account := r.GetAccount("ProgAddr"); account.Type != AccountProgram {
		t.Errorf("account type = %s, want PROGRAM", account.Type)
	}

	if _, err := r.PrepareSwapProgramAccount(g, ""); err == nil {
		t.Error("empty program address must error")
	}
}

func TestPrepareSwapProgramAccount_AfterRealSnapshots(t *testing.T) {
	r := New()
	g := graph.NewTransactionGraph()

	// The address already has two real snapshots; the virtual vertex must
	// come after them.
	r.CreateAccount("Addr", "", AccountUnknown, "", 0, 0)
	r.NewVersion("Addr")

	pa, err := r.PrepareSwapProgramAccount(g, "Addr")
	if err != nil {
		t.Fatalf("PrepareSwapProgramAccount: %v", err)
	}
	if pa.Vertex().Version != 2 {
		t.Errorf("virtual version = %d, want 2", pa.Vertex().Version)
	}
}

func TestUpdateOwnerInAllVersions(t *testing.T) {
	r := New()
	r.CreateAccount("addr1", "", AccountTokenAccount, "", 0, 0)

	if !r.UpdateOwnerInAllVersions("addr1", "owner1") {
		t.Error("expected owner update to apply")
	}
	if r.GetAccount("addr1").Owner != "owner1" {
		t.Error("owner not recorded")
	}
	if r.UpdateOwnerInAllVersions("addr1", "") {
		t.Error("empty owner must not apply")
	}
	if r.UpdateOwnerInAllVersions("missing", "owner1") {
		t.Error("unknown address must not apply")
	}
}

func TestAddAuthority(t *testing.T) {
	r := New()
	r.CreateAccount("addr1", "", AccountTokenAccount, "", 0, 0)

	if !r.AddAuthority("addr1", "auth1") {
		t.Error("first authority should be added")
	}
	if r.AddAuthority("addr1", "auth1") {
		t.Error("duplicate authority must be rejected")
	}
	if r.AddAuthority("addr1", "") {
		t.Error("empty authority must be rejected")
	}

	if got := len(r.GetAccount("addr1").Authorities); got != 1 {
		t.Errorf("authorities = %d, want 1", got)
	}
}

func TestIsOnCurve(t *testing.T) {
	// The system program address decodes to a valid curve point.
	if !IsOnCurve("11111111111111111111111111111111") {
		t.Error("system program address should be on curve")
	}
	if IsOnCurve("not-base58!") {
		t.Error("invalid base58 must be false")
	}
	if IsOnCurve("abc") {
		t.Error("short address must be false")
	}
}
