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
	"math"

	"github.com/zintix-labs/pourlab/projection"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CI 信賴區間
type CI struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Estimate 每日平均的點估計與 95% 信賴區間（Student-t）。
type Estimate struct {
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
	CI   CI      `json:"ci95" yaml:"ci95"`
}

// Report 模擬報表
type Report struct {
	Seed          int64              `json:"seed" yaml:"seed"`
	Days          int                `json:"days" yaml:"days"`
	ShiftsPerDay  int                `json:"shifts_per_day" yaml:"shifts_per_day"`
	Transactions  int64              `json:"transactions" yaml:"transactions"`
	Hits          int64              `json:"hits" yaml:"hits"`
	Wins          int64              `json:"wins" yaml:"wins"`
	Cost          int64              `json:"cost" yaml:"cost"`
	DeniedAccount int64              `json:"denied_account" yaml:"denied_account"`
	DeniedShift   int64              `json:"denied_shift" yaml:"denied_shift"`
	DeniedBudget  int64              `json:"denied_budget" yaml:"denied_budget"`
	DailyWins     Estimate           `json:"daily_wins" yaml:"daily_wins"`
	DailyCost     Estimate           `json:"daily_cost" yaml:"daily_cost"`
	Projected     projection.Horizon `json:"projected" yaml:"projected"`
}

// Deviation 模擬每日平均中獎次數與期望值的相對差（期望值為 0 時回傳 0）。
func (r *Report) Deviation() float64 {
	if r.Projected.Wins == 0 {
		return 0
	}
	return (r.DailyWins.Mean - r.Projected.Wins) / r.Projected.Wins
}

func newReport(cfg Config, seed int64, days []dayTally, projected projection.Horizon) *Report {
	r := &Report{
		Seed:         seed,
		Days:         len(days),
		ShiftsPerDay: cfg.ShiftsPerDay,
		Projected:    projected,
	}
	wins := make([]float64, len(days))
	cost := make([]float64, len(days))
	for i, d := range days {
		r.Hits += d.hits
		r.Wins += d.wins
		r.Cost += d.cost
		r.DeniedAccount += d.deniedAccount
		r.DeniedShift += d.deniedShift
		r.DeniedBudget += d.deniedBudget
		wins[i] = float64(d.wins)
		cost[i] = float64(d.cost)
	}
	if cfg.Assumptions.TransactionsPerDay > 0 {
		r.Transactions = cfg.Assumptions.TransactionsPerDay * int64(len(days))
	}
	r.DailyWins = estimate(wins)
	r.DailyCost = estimate(cost)
	return r
}

func estimate(x []float64) Estimate {
	n := len(x)
	if n == 0 {
		return Estimate{}
	}
	if n == 1 {
		return Estimate{Mean: x[0], CI: CI{Lo: x[0], Hi: x[0]}}
	}
	mean, std := stat.MeanStdDev(x, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(0.975)
	se := std / math.Sqrt(float64(n))
	return Estimate{
		Mean: mean,
		Std:  std,
		CI:   CI{Lo: max(mean-t*se, 0), Hi: mean + t*se},
	}
}
