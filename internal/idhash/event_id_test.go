package idhash

import "testing"

func TestComputeEventID(t *testing.T) {
	got := ComputeEventID("PoolAcct123", 1, "DEPOSIT_ACCEPTED", "Participant456", 1700000000)

	if len(got) != 64 {
		t.Errorf("ComputeEventID() length = %d, want 64", len(got))
	}

	// Same inputs, same id.
	got2 := ComputeEventID("PoolAcct123", 1, "DEPOSIT_ACCEPTED", "Participant456", 1700000000)
	if got != got2 {
		t.Errorf("ComputeEventID() not deterministic: %s != %s", got, got2)
	}
}

func TestComputeEventID_DifferentInputs(t *testing.T) {
	base := ComputeEventID("Pool", 1, "DEPOSIT_ACCEPTED", "P1", 1000)

	if base == ComputeEventID("OtherPool", 1, "DEPOSIT_ACCEPTED", "P1", 1000) {
		t.Error("Different pool account should produce different id")
	}
	if base == ComputeEventID("Pool", 2, "DEPOSIT_ACCEPTED", "P1", 1000) {
		t.Error("Different sequence should produce different id")
	}
	if base == ComputeEventID("Pool", 1, "CLAIM_COMPLETED", "P1", 1000) {
		t.Error("Different type should produce different id")
	}
	if base == ComputeEventID("Pool", 1, "DEPOSIT_ACCEPTED", "P2", 1000) {
		t.Error("Different participant should produce different id")
	}
	if base == ComputeEventID("Pool", 1, "DEPOSIT_ACCEPTED", "P1", 2000) {
		t.Error("Different timestamp should produce different id")
	}
}
