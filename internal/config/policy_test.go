package config

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewPolicyHolderDefaults(t *testing.T) {
	holder, err := NewPolicyHolder(zap.NewNop())
	if err != nil {
		t.Fatalf("new policy holder: %v", err)
	}

	policy := holder.Get()
	if policy.MinUnitsPerRequest != 1 {
		t.Fatalf("min units = %d, want 1", policy.MinUnitsPerRequest)
	}
	if policy.MaxUnitsPerRequest != 100_000 {
		t.Fatalf("max units = %d, want 100000", policy.MaxUnitsPerRequest)
	}
	if policy.VendingPaused {
		t.Fatal("vending paused by default")
	}
}

func TestPolicyHolderSet(t *testing.T) {
	holder := new(PolicyHolder)
	holder.Set(VendingPolicy{MinUnitsPerRequest: 10, MaxUnitsPerRequest: 500})

	policy := holder.Get()
	if policy.MinUnitsPerRequest != 10 || policy.MaxUnitsPerRequest != 500 {
		t.Fatalf("policy = %+v after Set", policy)
	}
}

func TestValidateVendingPolicy(t *testing.T) {
	cases := []struct {
		name   string
		policy VendingPolicy
		ok     bool
	}{
		{"defaults", DefaultVendingPolicy(), true},
		{"zero min", VendingPolicy{MinUnitsPerRequest: 0, MaxUnitsPerRequest: 10}, false},
		{"max below min", VendingPolicy{MinUnitsPerRequest: 50, MaxUnitsPerRequest: 10}, false},
		{"equal bounds", VendingPolicy{MinUnitsPerRequest: 5, MaxUnitsPerRequest: 5}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateVendingPolicy(tc.policy)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
