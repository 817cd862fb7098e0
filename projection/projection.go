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

// Package projection 提供 Lucky Pour 的期望值試算：給定獎勵政策與流量假設，
// 估算每日、7 日與 31 日的期望中獎次數與回饋成本。
//
// 試算是純函數：沒有 I/O、沒有共享狀態、O(1)，可以在每次輸入變動時重算。
// 任何輸入（包含 0 與負值）都不會回傳錯誤，退化情況一律得到 0。
// 31 日外推後超出 int64 範圍的輸入同樣視為退化。
//
// 上限套用順序固定：
//  1. 每帳號每日上限（帳號數 × 上限），帳號數 <= 0 時略過
//  2. 每班上限（視同每日上限，模型不區分一天內的多個班次）
//  3. 每日預算，最外層，超出時改為 floor(預算 / 單次回饋)
//
// 7 日與 31 日是每日結果的線性外推，不會在週/月層級重新套用上限。
package projection

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/zintix-labs/pourlab/reward"
)

const (
	DaysDaily   = 1
	DaysWeekly  = 7
	DaysMonthly = 31

	// maxCenti 31 日外推後仍可用 int64 表示的最大百分之一次數
	maxCenti = math.MaxInt64 / DaysMonthly
)

// Limiter 標記決定每日結果的是哪一個限制。
type Limiter uint8

const (
	LimiterNone       Limiter = iota // 未被任何上限截斷
	LimiterAccount                   // 每帳號每日上限
	LimiterShift                     // 每班上限
	LimiterBudget                    // 每日預算
	LimiterDegenerate                // 輸入退化（機率/回饋/交易量 <= 0，或結果溢位）
)

var limiterNames = map[Limiter]string{
	LimiterNone:       "none",
	LimiterAccount:    "account",
	LimiterShift:      "shift",
	LimiterBudget:     "budget",
	LimiterDegenerate: "degenerate",
}

func (l Limiter) String() string {
	if s, ok := limiterNames[l]; ok {
		return s
	}
	return "unknown"
}

func (l Limiter) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Limiter) UnmarshalText(b []byte) error {
	for k, v := range limiterNames {
		if v == string(b) {
			*l = k
			return nil
		}
	}
	return fmt.Errorf("projection: unknown limiter %q", b)
}

// Horizon 單一期間的期望值。Wins 取到小數兩位，Cost 為最小貨幣單位。
type Horizon struct {
	Days int     `json:"days" yaml:"days"`
	Wins float64 `json:"wins" yaml:"wins"`
	Cost int64   `json:"cost" yaml:"cost"`
}

// Result 試算結果。
type Result struct {
	Daily   Horizon `json:"daily" yaml:"daily"`
	Weekly  Horizon `json:"weekly" yaml:"weekly"`
	Monthly Horizon `json:"monthly" yaml:"monthly"`
	Limiter Limiter `json:"limiter" yaml:"limiter"`
}

// Horizons 固定順序：每日、7 日、31 日。
func (r Result) Horizons() []Horizon {
	return []Horizon{r.Daily, r.Weekly, r.Monthly}
}

// Project 依政策與假設計算三個期間的期望中獎次數與成本。
func Project(p reward.Policy, a reward.Assumptions) Result {
	if p.ChancePercent <= 0 || p.RewardAmount <= 0 || a.TransactionsPerDay <= 0 {
		return zero(LimiterDegenerate)
	}
	// NaN / Inf 無法產生有意義的期望值
	if math.IsNaN(p.ChancePercent) || math.IsInf(p.ChancePercent, 0) {
		return zero(LimiterDegenerate)
	}

	raw := float64(a.TransactionsPerDay) * (p.ChancePercent / 100)
	lim := LimiterNone

	if p.MaxWinsPerAccountPerDay != nil && a.UniqueAccountsPerDay > 0 {
		byAccount := float64(a.UniqueAccountsPerDay) * float64(*p.MaxWinsPerAccountPerDay)
		if byAccount < raw {
			raw, lim = byAccount, LimiterAccount
		}
	}
	if p.MaxWinsPerShift != nil {
		if byShift := float64(*p.MaxWinsPerShift); byShift < raw {
			raw, lim = byShift, LimiterShift
		}
	}
	if raw < 0 {
		raw = 0
	}

	amount := p.RewardAmount
	if p.DailyBudget != nil && raw*float64(amount) > float64(*p.DailyBudget) {
		raw, lim = float64(max(floorDiv(*p.DailyBudget, amount), 0)), LimiterBudget
	}

	// 以「百分之一次」為單位的整數，確保顯示的次數與成本一致
	centiF := math.Round(raw * 100)
	if centiF >= maxCenti {
		return zero(LimiterDegenerate)
	}
	centi := int64(centiF)
	cost, ok := centiCost(centi, amount)
	if !ok {
		return zero(LimiterDegenerate)
	}

	// 四捨五入可能把成本推回預算之上，此時改以預算可負擔的最大值為準
	if p.DailyBudget != nil && *p.DailyBudget >= 0 && cost > *p.DailyBudget {
		// cost > budget 保證商小於 centi，不會溢位
		hi, lo := bits.Mul64(uint64(*p.DailyBudget), 100)
		q, _ := bits.Div64(hi, lo, uint64(amount))
		centi = int64(q)
		cost, _ = centiCost(centi, amount)
		lim = LimiterBudget
	}

	return Result{
		Daily:   horizon(DaysDaily, centi, cost),
		Weekly:  horizon(DaysWeekly, centi, cost),
		Monthly: horizon(DaysMonthly, centi, cost),
		Limiter: lim,
	}
}

func horizon(days int, centi int64, dailyCost int64) Horizon {
	d := int64(days)
	return Horizon{
		Days: days,
		Wins: float64(centi*d) / 100,
		Cost: dailyCost * d,
	}
}

func zero(lim Limiter) Result {
	return Result{
		Daily:   Horizon{Days: DaysDaily},
		Weekly:  Horizon{Days: DaysWeekly},
		Monthly: Horizon{Days: DaysMonthly},
		Limiter: lim,
	}
}

// centiCost 由百分之一次換算成本，四捨五入到最小貨幣單位。
// 以 128 位元計算；31 日外推會溢位時 ok 為 false。centi、amount 必須 >= 0。
func centiCost(centi, amount int64) (cost int64, ok bool) {
	hi, lo := bits.Mul64(uint64(centi), uint64(amount))
	var carry uint64
	lo, carry = bits.Add64(lo, 50, 0)
	hi += carry
	if hi >= 100 {
		return 0, false
	}
	q, _ := bits.Div64(hi, lo, 100)
	if q > math.MaxInt64/DaysMonthly {
		return 0, false
	}
	return int64(q), true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
