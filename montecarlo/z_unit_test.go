// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package montecarlo

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/reward"
)

func cfgOf(p reward.Policy, tx, accounts int64, days, shifts, workers int) Config {
	return Config{
		Policy:       p,
		Assumptions:  reward.Assumptions{TransactionsPerDay: tx, UniqueAccountsPerDay: accounts},
		Days:         days,
		ShiftsPerDay: shifts,
		Workers:      workers,
	}
}

func run(t *testing.T, cfg Config, seed int64) *Report {
	t.Helper()
	s, err := NewWithSeed(cfg, seed)
	if err != nil {
		t.Fatalf("NewWithSeed: %v", err)
	}
	rep, _, err := s.Run(false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return rep
}

func TestInvalidConfig(t *testing.T) {
	p := reward.DefaultPolicy()
	bad := []Config{
		cfgOf(p, 100, 30, 0, 1, 1),
		cfgOf(p, 100, 30, 10, 0, 1),
		cfgOf(p, 100, 30, 10, 1, 0),
		cfgOf(p, MaxTransactionsDay+1, 30, 10, 1, 1),
		cfgOf(p, 100, 30, 10, MaxShiftsPerDay+1, 1),
		cfgOf(p, 100, 30, 10, 1<<50, 1),
		cfgOf(p, 100, 30, 10, -3, 1),
	}
	for i, c := range bad {
		if _, err := NewWithSeed(c, 1); !errs.IsWarn(err) {
			t.Fatalf("case %d: warn expected, got %v", i, err)
		}
	}
}

func TestDegenerateIsZero(t *testing.T) {
	rep := run(t, cfgOf(reward.Policy{ChancePercent: 0, RewardAmount: 500}, 100, 30, 5, 1, 2), 7)
	if rep.Wins != 0 || rep.Cost != 0 || rep.Hits != 0 || rep.Days != 5 {
		t.Fatalf("degenerate run must be zero: %+v", rep)
	}
	if rep.Deviation() != 0 {
		t.Fatalf("deviation must be 0")
	}
}

func TestDeterministicAcrossWorkers(t *testing.T) {
	p := reward.Policy{ChancePercent: 5, RewardAmount: 500, MaxWinsPerAccountPerDay: reward.Limit(1), DailyBudget: reward.Limit(3000)}
	a := run(t, cfgOf(p, 400, 60, 64, 2, 1), 42)
	b := run(t, cfgOf(p, 400, 60, 64, 2, 8), 42)
	if *a != *b {
		t.Fatalf("same seed must give same report regardless of workers\n%+v\n%+v", a, b)
	}
}

func TestCapsRespectedEveryDay(t *testing.T) {
	p := reward.Policy{ChancePercent: 50, RewardAmount: 500, MaxWinsPerShift: reward.Limit(10), DailyBudget: reward.Limit(12000)}
	s, err := NewWithSeed(cfgOf(p, 200, 0, 30, 3, 3), 3)
	if err != nil {
		t.Fatalf("NewWithSeed: %v", err)
	}
	d := newDaySim(s.cfg)
	for i := 0; i < 30; i++ {
		tally := d.run(newDayRand(daySeed(3, i)))
		if tally.cost > 12000 {
			t.Fatalf("day %d cost %d exceeds budget", i, tally.cost)
		}
		// 3 shifts * 10 = 30 wins max, budget allows 24
		if tally.wins > 24 {
			t.Fatalf("day %d wins %d exceed caps", i, tally.wins)
		}
		if tally.hits != tally.wins+tally.deniedShift+tally.deniedBudget+tally.deniedAccount {
			t.Fatalf("day %d hits do not add up: %+v", i, tally)
		}
	}
}

func TestMeanTracksProjectionWithoutCaps(t *testing.T) {
	p := reward.Policy{ChancePercent: 5, RewardAmount: 500}
	rep := run(t, cfgOf(p, 1000, 100, 2000, 1, 4), 11)
	// expectation 50 wins/day, std of the mean ~ sqrt(47.5/2000) ~ 0.15
	if math.Abs(rep.DailyWins.Mean-50) > 1.0 {
		t.Fatalf("mean daily wins %.3f too far from 50", rep.DailyWins.Mean)
	}
	if rep.DailyWins.CI.Lo > 50 || rep.DailyWins.CI.Hi < 50 {
		// 95% CI may miss; allow only when the miss is tiny
		if math.Abs(rep.DailyWins.Mean-50) > 0.5 {
			t.Fatalf("CI [%.3f, %.3f] misses 50 by too much", rep.DailyWins.CI.Lo, rep.DailyWins.CI.Hi)
		}
	}
	if rep.Projected.Wins != 50 || rep.Cost != rep.Wins*500 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if math.Abs(rep.Deviation()) > 0.02 {
		t.Fatalf("deviation %.4f too large", rep.Deviation())
	}
}

func TestAccountCapBinds(t *testing.T) {
	p := reward.Policy{ChancePercent: 50, RewardAmount: 100, MaxWinsPerAccountPerDay: reward.Limit(1)}
	rep := run(t, cfgOf(p, 100, 3, 20, 1, 2), 5)
	if rep.Wins > 3*20 {
		t.Fatalf("wins %d exceed 3 accounts * 1 * 20 days", rep.Wins)
	}
	if rep.DeniedAccount == 0 {
		t.Fatalf("account cap should deny some wins")
	}
}

func TestEstimateSingleDay(t *testing.T) {
	e := estimate([]float64{4})
	if e.Mean != 4 || e.Std != 0 || e.CI.Lo != 4 || e.CI.Hi != 4 {
		t.Fatalf("unexpected estimate %+v", e)
	}
}

func TestRunContextCanceled(t *testing.T) {
	s, err := NewWithSeed(cfgOf(reward.DefaultPolicy(), 100, 30, 50, 1, 2), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, _, err := s.RunContext(ctx, false)
	if rep != nil || !errors.Is(err, context.Canceled) || !errs.IsWarn(err) {
		t.Fatalf("want canceled warn, got %v %v", rep, err)
	}
}

func TestMaxShiftsRuns(t *testing.T) {
	p := reward.DefaultPolicy()
	p.MaxWinsPerShift = reward.Limit(1)
	rep := run(t, cfgOf(p, 500, 30, 3, MaxShiftsPerDay, 2), 5)
	if rep.Wins > int64(3*MaxShiftsPerDay) {
		t.Fatalf("wins %d exceed shift caps", rep.Wins)
	}
}

func TestWorkerPanicIsFatal(t *testing.T) {
	s, err := NewWithSeed(cfgOf(reward.DefaultPolicy(), 100, 30, 40, 1, 3), 1)
	if err != nil {
		t.Fatal(err)
	}
	s.dayFn = func(d *daySim, rng *rand.Rand) dayTally {
		panic("boom")
	}
	rep, _, err := s.RunContext(context.Background(), false)
	if rep != nil || err == nil || errs.IsWarn(err) {
		t.Fatalf("want fatal, got %v %v", rep, err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("panic value missing: %v", err)
	}
}
