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

package pourlab

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/montecarlo"
	"github.com/zintix-labs/pourlab/projection"
	"github.com/zintix-labs/pourlab/reward"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"a.yaml": {Data: []byte("pub_id: 1\nname: North-Side\npolicy:\n  chance_percent: 5\n  reward_amount: 500\n")},
		"b.json": {Data: []byte(`{"pub_id":2,"name":"old-town","enabled":true,"policy":{"chance_percent":5,"reward_amount":500,"daily_budget":2000},"assumptions":{"transactions_per_day":100,"unique_accounts_per_day":30}}`)},
	}
}

func newLab(t *testing.T) *Pourlab {
	t.Helper()
	lab, err := New(Configs(testFS())...)
	if err != nil {
		t.Fatal(err)
	}
	return lab
}

func TestNewRequiresConfigs(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without configs")
	}
}

func TestProject(t *testing.T) {
	lab := newLab(t)
	if ids := lab.IDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids = %v", ids)
	}

	rep, err := lab.Project(1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Result.Daily.Wins != 5 || rep.Result.Daily.Cost != 2500 || rep.Title != "north-side" {
		t.Fatalf("unexpected report %+v", rep)
	}

	rep, err = lab.ProjectByName("OLD-TOWN", nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Result.Daily.Cost != 2000 || rep.Result.Limiter != projection.LimiterBudget {
		t.Fatalf("budget not applied: %+v", rep.Result)
	}

	rep, err = lab.Project(1, &reward.Assumptions{TransactionsPerDay: 400, UniqueAccountsPerDay: 10})
	if err != nil || rep.Result.Daily.Wins != 20 {
		t.Fatalf("override assumptions: %+v %v", rep, err)
	}

	if _, err := lab.Project(1, &reward.Assumptions{TransactionsPerDay: -1}); !errs.IsWarn(err) {
		t.Fatalf("negative assumptions should warn: %v", err)
	}
	if _, err := lab.Project(99, nil); !errs.IsWarn(err) {
		t.Fatalf("unknown pub should warn: %v", err)
	}
}

func TestSummariesAndPresets(t *testing.T) {
	lab := newLab(t)
	sum := lab.Summaries()
	if len(sum) != 2 || sum[1].Capped != true || sum[0].Capped {
		t.Fatalf("summaries = %+v", sum)
	}
	ps, err := lab.Presets(2, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != len(reward.Presets()) {
		t.Fatalf("preset count = %d", len(ps))
	}
	for _, p := range ps {
		if p.Result.Daily.Cost > 2000 {
			t.Fatalf("preset %s exceeds budget", p.Preset.Key)
		}
	}
}

func TestSimulatorWithSeed(t *testing.T) {
	lab := newLab(t)
	s1, err := lab.NewSimulatorWithSeed(1, 30, 1, 2, 7)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := lab.NewSimulatorWithSeed(1, 30, 1, 4, 7)
	if err != nil {
		t.Fatal(err)
	}
	r1, _, err := s1.Run(false)
	if err != nil {
		t.Fatal(err)
	}
	r2, _, err := s2.Run(false)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Wins != r2.Wins || r1.Cost != r2.Cost {
		t.Fatalf("same seed must reproduce: %d/%d vs %d/%d", r1.Wins, r1.Cost, r2.Wins, r2.Cost)
	}
	if _, err := lab.NewSimulator(1, 0, 1, 1); !errs.IsWarn(err) {
		t.Fatalf("days 0 should warn: %v", err)
	}
}

func TestSimPool(t *testing.T) {
	lab := newLab(t)
	cfg, err := lab.SimConfig(2, 10, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	pool := NewSimPool(1, 2)
	seed := int64(3)
	rep, err := pool.Simulate(context.Background(), cfg, &seed)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Seed != 3 || rep.Days != 10 {
		t.Fatalf("report = %+v", rep)
	}
	for _, c := range []int64{rep.Cost} {
		if c > 2000*10 {
			t.Fatalf("cost %d exceeds budget", c)
		}
	}

	// slot 被佔用時，等待中的請求會隨 ctx 結束
	pool.slots <- struct{}{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Simulate(ctx, cfg, &seed)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
	<-pool.slots
	if st := pool.Stats(); st.Rejected != 1 || st.InFlight != 0 || st.Capacity != 1 {
		t.Fatalf("stats = %+v", st)
	}

	bad := cfg
	bad.Days = 0
	if _, err := pool.Simulate(context.Background(), bad, nil); !errs.IsWarn(err) {
		t.Fatalf("invalid config should warn: %v", err)
	}

	pool.Close()
	pool.Close()
	if _, err := pool.Simulate(context.Background(), cfg, nil); err == nil || !pool.Closed() {
		t.Fatal("closed pool should reject")
	}
	if pool.ClosedReason() != "closed" {
		t.Fatalf("reason = %q", pool.ClosedReason())
	}
}

func TestSimPoolCanceledRun(t *testing.T) {
	pool := NewSimPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := montecarlo.Config{
		Policy:       reward.DefaultPolicy(),
		Assumptions:  reward.DefaultAssumptions(),
		Days:         100,
		ShiftsPerDay: 1,
		Workers:      1,
	}
	// ctx 已取消：可能在等 slot 時或派工時被攔下，兩者都應回報 Canceled
	if _, err := pool.Simulate(ctx, cfg, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled, got %v", err)
	}
}

func TestSimPoolRejectsHugeShifts(t *testing.T) {
	pool := NewSimPool(1, 2)
	defer pool.Close()
	cfg := montecarlo.Config{
		Policy:       reward.DefaultPolicy(),
		Assumptions:  reward.DefaultAssumptions(),
		Days:         1,
		ShiftsPerDay: 1 << 50,
	}
	seed := int64(1)
	if _, err := pool.Simulate(context.Background(), cfg, &seed); !errs.IsWarn(err) {
		t.Fatalf("want warn, got %v", err)
	}
	cfg.ShiftsPerDay = montecarlo.MaxShiftsPerDay
	if _, err := pool.Simulate(context.Background(), cfg, &seed); err != nil {
		t.Fatal(err)
	}
	if st := pool.Stats(); st.InFlight != 0 || st.Panics != 0 {
		t.Fatalf("stats = %+v", st)
	}
}
