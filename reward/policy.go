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

// Package reward 定義 Lucky Pour 的獎勵政策（Policy）、模擬假設（Assumptions）與其驗證規則。
//
// 金額一律以最小貨幣單位（grosze）的 int64 表示；上限欄位以指標表示「可選」，nil 代表不限制。
package reward

import (
	"math"

	"github.com/zintix-labs/pourlab/errs"
)

// Policy 單一酒吧的 Lucky Pour 獎勵政策。
type Policy struct {
	// ChancePercent 單筆交易中獎機率(%)
	ChancePercent float64 `json:"chance_percent" yaml:"chance_percent" toml:"chance_percent"`
	// RewardAmount 每次中獎回饋(grosze)
	RewardAmount int64 `json:"reward_amount" yaml:"reward_amount" toml:"reward_amount"`
	// MaxWinsPerAccountPerDay 每帳號每日最多中獎次數
	MaxWinsPerAccountPerDay *int64 `json:"max_wins_per_day_per_account,omitempty" yaml:"max_wins_per_day_per_account,omitempty" toml:"max_wins_per_day_per_account,omitempty"`
	// MaxWinsPerShift 每班最多中獎次數
	MaxWinsPerShift *int64 `json:"max_wins_per_shift,omitempty" yaml:"max_wins_per_shift,omitempty" toml:"max_wins_per_shift,omitempty"`
	// DailyBudget 每日回饋總預算(grosze)
	DailyBudget *int64 `json:"daily_budget,omitempty" yaml:"daily_budget,omitempty" toml:"daily_budget,omitempty"`
}

// Assumptions 模擬用的流量假設，只存在於試算，不會被保存。
type Assumptions struct {
	TransactionsPerDay   int64 `json:"transactions_per_day" yaml:"transactions_per_day" toml:"transactions_per_day"`
	UniqueAccountsPerDay int64 `json:"unique_accounts_per_day" yaml:"unique_accounts_per_day" toml:"unique_accounts_per_day"`
}

// Limit 建立一個可選上限的值，方便以字面量組出 Policy。
func Limit(n int64) *int64 {
	return &n
}

// DefaultPolicy 與後台新建設定時的預設值一致：5%、5 zł、不設上限。
func DefaultPolicy() Policy {
	return Policy{
		ChancePercent: 5,
		RewardAmount:  500,
	}
}

// DefaultAssumptions 試算面板的預設流量。
func DefaultAssumptions() Assumptions {
	return Assumptions{
		TransactionsPerDay:   100,
		UniqueAccountsPerDay: 30,
	}
}

// Validate 儲存前的檢查。
//
// 試算本身接受任何輸入（包含 0 與負值）；這裡的規則只用在要把政策送往後台之前。
func (p Policy) Validate() error {
	if math.IsNaN(p.ChancePercent) || p.ChancePercent <= 0 || p.ChancePercent > 100 {
		return errs.Invalid("chance_percent", "chance must be in (0, 100]")
	}
	if p.RewardAmount <= 0 {
		return errs.Invalid("reward_amount", "reward amount must be > 0")
	}
	if err := positiveOrNil("max_wins_per_day_per_account", p.MaxWinsPerAccountPerDay); err != nil {
		return err
	}
	if err := positiveOrNil("max_wins_per_shift", p.MaxWinsPerShift); err != nil {
		return err
	}
	return positiveOrNil("daily_budget", p.DailyBudget)
}

func positiveOrNil(field string, v *int64) error {
	if v != nil && *v <= 0 {
		return errs.Invalid(field, "limit must be > 0 when set")
	}
	return nil
}

// Validate API / CLI 邊界用：流量假設不可為負。
func (a Assumptions) Validate() error {
	if a.TransactionsPerDay < 0 {
		return errs.Invalid("transactions_per_day", "transactions per day must be >= 0")
	}
	if a.UniqueAccountsPerDay < 0 {
		return errs.Invalid("unique_accounts_per_day", "unique accounts per day must be >= 0")
	}
	return nil
}

// Capped 回報是否設定了任何上限。
func (p Policy) Capped() bool {
	return p.MaxWinsPerAccountPerDay != nil || p.MaxWinsPerShift != nil || p.DailyBudget != nil
}
