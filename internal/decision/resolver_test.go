package decision

import (
	"errors"
	"testing"
	"time"

	"github.com/Dark0tter/D-ai-Trader/internal/fusion"
)

var cycleTS = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

func fused(net float64) fusion.Result {
	conf := 50 + net
	if conf < 0 {
		conf = 0
	}
	if conf > 100 {
		conf = 100
	}
	return fusion.Result{Symbol: "AAPL", CycleTS: cycleTS, NetScore: net, Confidence: conf}
}

func TestResolveBlockedAlwaysHolds(t *testing.T) {
	blk := fusion.Block{Blocked: true, Reason: fusion.ReasonBearishNews}
	for _, baseline := range []Action{ActionBuy, ActionSell, ActionHold} {
		for net := -100.0; net <= 100.0; net += 12.5 {
			dec, err := Resolve(baseline, fused(net), blk, ResolverConfig{})
			if err != nil {
				t.Fatalf("baseline %s net %v: %v", baseline, net, err)
			}
			if dec.Action != ActionHold {
				t.Errorf("baseline %s net %v: want HOLD, got %s", baseline, net, dec.Action)
			}
			if !dec.Blocked || dec.BlockedReason != fusion.ReasonBearishNews {
				t.Errorf("baseline %s net %v: block not recorded: %+v", baseline, net, dec)
			}
		}
	}
}

func TestResolveOverrides(t *testing.T) {
	cases := []struct {
		name       string
		baseline   Action
		net        float64
		wantAction Action
		wantReason string
	}{
		{"buy with bearish fusion downgrades", ActionBuy, -20, ActionHold, ReasonDowngrade},
		{"buy at downgrade boundary stands", ActionBuy, -15, ActionBuy, ""},
		{"buy with mild bearish fusion stands", ActionBuy, -10, ActionBuy, ""},
		{"hold with bullish fusion upgrades", ActionHold, 30, ActionBuy, ReasonUpgrade},
		{"hold at upgrade boundary stands", ActionHold, 25, ActionHold, ""},
		{"hold with mild bullish fusion stands", ActionHold, 10, ActionHold, ""},
		{"sell never overridden bullish", ActionSell, 90, ActionSell, ""},
		{"sell never overridden bearish", ActionSell, -90, ActionSell, ""},
		{"buy with bullish fusion stands", ActionBuy, 60, ActionBuy, ""},
		{"hold with bearish fusion stands", ActionHold, -60, ActionHold, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := Resolve(tc.baseline, fused(tc.net), fusion.Block{}, ResolverConfig{})
			if err != nil {
				t.Fatal(err)
			}
			if dec.Action != tc.wantAction {
				t.Errorf("action: want %s, got %s", tc.wantAction, dec.Action)
			}
			if dec.OverrideReason != tc.wantReason {
				t.Errorf("reason: want %q, got %q", tc.wantReason, dec.OverrideReason)
			}
		})
	}
}

func TestResolveNeverProducesSellFromOverride(t *testing.T) {
	for _, baseline := range []Action{ActionBuy, ActionHold, ActionSell} {
		for net := -100.0; net <= 100.0; net += 5 {
			dec, err := Resolve(baseline, fused(net), fusion.Block{}, ResolverConfig{})
			if err != nil {
				var inv *InvariantError
				if !errors.As(err, &inv) {
					t.Fatalf("unexpected error type: %v", err)
				}
				continue
			}
			if dec.OverrideReason != "" && dec.Action == ActionSell {
				t.Fatalf("baseline %s net %v: override produced SELL", baseline, net)
			}
		}
	}
}

func TestResolveInvalidBaselineHolds(t *testing.T) {
	dec, err := Resolve(Action("SHORT"), fused(80), fusion.Block{}, ResolverConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if dec.Action != ActionHold {
		t.Errorf("want HOLD, got %s", dec.Action)
	}
	if dec.OverrideReason != ReasonInsufficientData {
		t.Errorf("reason: want %q, got %q", ReasonInsufficientData, dec.OverrideReason)
	}
}

func TestResolveCustomThresholds(t *testing.T) {
	cfg := ResolverConfig{DowngradeBelow: -30, UpgradeAbove: 50}
	dec, err := Resolve(ActionBuy, fused(-20), fusion.Block{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Action != ActionBuy {
		t.Errorf("-20 should stand at a -30 threshold, got %s", dec.Action)
	}
	dec, err = Resolve(ActionHold, fused(40), fusion.Block{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Action != ActionHold {
		t.Errorf("40 should stand at a 50 threshold, got %s", dec.Action)
	}
}
