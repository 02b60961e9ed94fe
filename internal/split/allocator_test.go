package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAllocateEqual(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []string
		wantEach     string
	}{
		{
			name:         "300 over two participants plus creator",
			total:        "300.00",
			participants: []string{"B", "C"},
			wantEach:     "100",
		},
		{
			name:         "single participant",
			total:        "50",
			participants: []string{"B"},
			wantEach:     "25",
		},
		{
			name:         "duplicates collapse",
			total:        "300",
			participants: []string{"B", "C", "B"},
			wantEach:     "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Allocate(dec(tt.total), tt.participants, ModeEqual, nil)
			if err != nil {
				t.Fatalf("Allocate failed: %v", err)
			}

			want := dec(tt.wantEach)
			sum := decimal.Zero
			for id, share := range shares {
				if !share.Equal(want) {
					t.Errorf("share for %s = %s, want %s", id, share, want)
				}
				sum = sum.Add(share)
			}

			// Explicit shares plus the creator's share reconcile to the total.
			creator := CreatorShare(dec(tt.total), shares)
			if !creator.Equal(want) {
				t.Errorf("creator share = %s, want %s", creator, want)
			}
			if !sum.Add(creator).Equal(dec(tt.total)) {
				t.Errorf("shares sum to %s, total is %s", sum.Add(creator), tt.total)
			}
		})
	}
}

func TestAllocateCustom(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		custom  map[string]decimal.Decimal
		wantErr error
	}{
		{
			name:   "amounts reconcile",
			total:  "90",
			custom: map[string]decimal.Decimal{"B": dec("60"), "C": dec("30")},
		},
		{
			name:   "within tolerance",
			total:  "90",
			custom: map[string]decimal.Decimal{"B": dec("60"), "C": dec("30.01")},
		},
		{
			name:    "amounts do not reconcile",
			total:   "90",
			custom:  map[string]decimal.Decimal{"B": dec("60"), "C": dec("40")},
			wantErr: ErrReconciliation,
		},
		{
			name:    "missing amount rejected",
			total:   "90",
			custom:  map[string]decimal.Decimal{"B": dec("90")},
			wantErr: ErrMissingAmount,
		},
		{
			name:    "zero amount rejected",
			total:   "90",
			custom:  map[string]decimal.Decimal{"B": dec("90"), "C": dec("0")},
			wantErr: ErrNegativeShare,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Allocate(dec(tt.total), []string{"B", "C"}, ModeCustom, tt.custom)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Allocate error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate failed: %v", err)
			}
			for id, want := range tt.custom {
				if !shares[id].Equal(want) {
					t.Errorf("share for %s = %s, want %s", id, shares[id], want)
				}
			}
		})
	}
}

func TestAllocateValidation(t *testing.T) {
	if _, err := Allocate(dec("0"), []string{"B"}, ModeEqual, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero total: error = %v, want ErrInvalidAmount", err)
	}
	if _, err := Allocate(dec("-10"), []string{"B"}, ModeEqual, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative total: error = %v, want ErrInvalidAmount", err)
	}
	if _, err := Allocate(dec("100"), nil, ModeEqual, nil); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("no participants: error = %v, want ErrNoParticipants", err)
	}
	if _, err := Allocate(dec("100"), []string{""}, ModeEqual, nil); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("blank participant: error = %v, want ErrNoParticipants", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeEqual {
		t.Errorf("ParseMode(\"\") = %v, %v; want equal", m, err)
	}
	if _, err := ParseMode("proportional"); err == nil {
		t.Error("ParseMode(\"proportional\") expected error")
	}
}
