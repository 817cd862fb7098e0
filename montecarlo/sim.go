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

// Package montecarlo 以逐筆交易模擬 Lucky Pour 的實際發放，用來交叉驗證 projection 的期望值。
//
// 與 projection 不同：每筆交易都抽一次亂數，並在當下檢查帳號、班次與預算上限，
// 因此會反映上限之間的交互作用（例如預算在晚班前就用完）。
package montecarlo

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/projection"
	"github.com/zintix-labs/pourlab/reward"
)

const (
	MaxDays             = 3660
	MaxTransactionsDay  = 1_000_000
	MaxUniqueAccountDay = 1_000_000
	MaxShiftsPerDay     = 24
)

// Config 模擬參數。ShiftsPerDay 為 1 時，每班上限等同每日上限（與 projection 的模型一致）。
type Config struct {
	Policy       reward.Policy
	Assumptions  reward.Assumptions
	Days         int
	ShiftsPerDay int
	Workers      int
}

func (c Config) valid() error {
	if c.Days < 1 || c.Days > MaxDays {
		return errs.Invalid("days", "days must be between 1 and 3660")
	}
	if c.ShiftsPerDay < 1 || c.ShiftsPerDay > MaxShiftsPerDay {
		return errs.Invalid("shifts_per_day", "shifts per day must be between 1 and 24")
	}
	if c.Workers < 1 {
		return errs.Invalid("workers", "workers must > 0")
	}
	if c.Assumptions.TransactionsPerDay > MaxTransactionsDay {
		return errs.Invalid("transactions_per_day", "transactions per day must <= 1,000,000")
	}
	if c.Assumptions.UniqueAccountsPerDay > MaxUniqueAccountDay {
		return errs.Invalid("unique_accounts_per_day", "unique accounts per day must <= 1,000,000")
	}
	return nil
}

// Simulator 逐筆交易模擬器。
type Simulator struct {
	cfg  Config
	seed int64
	// dayFn 測試用；nil 時為 (*daySim).run
	dayFn func(d *daySim, rng *rand.Rand) dayTally
}

// New 以隨機種子建立模擬器
func New(cfg Config) (*Simulator, error) {
	seed, err := randomSeed()
	if err != nil {
		return nil, errs.Wrap(err, "seed generate failed")
	}
	return NewWithSeed(cfg, seed)
}

// NewWithSeed 以指定種子建立模擬器；相同種子與設定必定得到相同報表。
func NewWithSeed(cfg Config, seed int64) (*Simulator, error) {
	if err := cfg.valid(); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg, seed: seed}, nil
}

func (s *Simulator) Seed() int64 { return s.seed }

// dayTally 單日紀錄
type dayTally struct {
	hits          int64 // 抽中（尚未檢查上限）
	wins          int64 // 實際發放
	cost          int64
	deniedAccount int64
	deniedShift   int64
	deniedBudget  int64
}

// Run 平行模擬 cfg.Days 天，回傳報表與用時。
func (s *Simulator) Run(showpb bool) (*Report, time.Duration, error) {
	return s.RunContext(context.Background(), showpb)
}

// RunContext 與 Run 相同；ctx 結束時停止派工，回傳包含 ctx.Err() 的 Warn。
// worker 內的 panic 會停止派工並以 Fatal 回傳。
func (s *Simulator) RunContext(ctx context.Context, showpb bool) (*Report, time.Duration, error) {
	cfg := s.cfg
	start := time.Now()
	daily := projection.Project(cfg.Policy, cfg.Assumptions)
	if daily.Limiter == projection.LimiterDegenerate {
		return newReport(cfg, s.seed, make([]dayTally, cfg.Days), daily.Daily), time.Since(start), nil
	}

	days := make([]dayTally, cfg.Days)
	jobs := make(chan int, min(cfg.Days, 2048))

	bar := pb.New(cfg.Days)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		panicOnce sync.Once
		panicErr  error
	)
	wg := new(sync.WaitGroup)
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() {
						panicErr = errs.NewFatal(fmt.Sprintf("simulation worker panic: %v\n%s", r, debug.Stack()))
					})
					cancel()
					// 排空剩餘工作，讓派工端不會卡住
					for range jobs {
					}
				}
			}()
			d := newDaySim(cfg)
			for i := range jobs {
				// 每個 index 只會被一個 worker 寫入，不需要鎖
				days[i] = s.runDay(d, newDayRand(daySeed(s.seed, i)))
				bar.Increment()
			}
		}()
	}
dispatch:
	for i := 0; i < cfg.Days; i++ {
		select {
		case <-runCtx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	bar.Finish()

	if panicErr != nil {
		return nil, time.Since(start), panicErr
	}
	if err := ctx.Err(); err != nil {
		return nil, time.Since(start), errs.WrapAs(errs.Warn, err, "simulation canceled")
	}
	return newReport(cfg, s.seed, days, daily.Daily), time.Since(start), nil
}

func (s *Simulator) runDay(d *daySim, rng *rand.Rand) dayTally {
	if s.dayFn != nil {
		return s.dayFn(d, rng)
	}
	return d.run(rng)
}

// daySim 每個 worker 持有一份，重複使用計數緩衝。
type daySim struct {
	p          reward.Policy
	tx         int64
	accounts   int64
	shifts     int64
	chance     float64
	accountBuf []int64
	shiftBuf   []int64
}

func newDaySim(cfg Config) *daySim {
	d := &daySim{
		p:        cfg.Policy,
		tx:       cfg.Assumptions.TransactionsPerDay,
		accounts: cfg.Assumptions.UniqueAccountsPerDay,
		shifts:   int64(cfg.ShiftsPerDay),
		chance:   cfg.Policy.ChancePercent / 100,
		shiftBuf: make([]int64, cfg.ShiftsPerDay),
	}
	if d.p.MaxWinsPerAccountPerDay != nil && d.accounts > 0 {
		d.accountBuf = make([]int64, d.accounts)
	}
	return d
}

func (d *daySim) run(rng *rand.Rand) dayTally {
	clear(d.accountBuf)
	clear(d.shiftBuf)
	var t dayTally
	amount := d.p.RewardAmount
	for i := int64(0); i < d.tx; i++ {
		if rng.Float64() >= d.chance {
			continue
		}
		t.hits++
		// 交易依時間順序平均分配到各班
		shift := i * d.shifts / d.tx
		acc := int64(-1)
		if d.accountBuf != nil {
			acc = rng.Int64N(d.accounts)
			if d.accountBuf[acc] >= *d.p.MaxWinsPerAccountPerDay {
				t.deniedAccount++
				continue
			}
		}
		if d.p.MaxWinsPerShift != nil && d.shiftBuf[shift] >= *d.p.MaxWinsPerShift {
			t.deniedShift++
			continue
		}
		if d.p.DailyBudget != nil && t.cost+amount > *d.p.DailyBudget {
			t.deniedBudget++
			continue
		}
		if acc >= 0 {
			d.accountBuf[acc]++
		}
		d.shiftBuf[shift]++
		t.wins++
		t.cost += amount
	}
	return t
}
