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

package reward

import "time"

// Config 後台保存的 Lucky Pour 設定（與 CyberTap API 的 wire format 一致）。
type Config struct {
	ID                      int64     `json:"id" yaml:"id"`
	OrganizationID          int64     `json:"organization_id" yaml:"organization_id"`
	PubID                   int64     `json:"pub_id" yaml:"pub_id"`
	Enabled                 bool      `json:"enabled" yaml:"enabled"`
	ChancePercent           float64   `json:"chance_percent" yaml:"chance_percent"`
	RewardAmount            int64     `json:"reward_amount" yaml:"reward_amount"`
	MinPourVolume           *int64    `json:"min_pour_volume" yaml:"min_pour_volume"`
	MinPourCost             *int64    `json:"min_pour_cost" yaml:"min_pour_cost"`
	MaxWinsPerDayPerAccount *int64    `json:"max_wins_per_day_per_account" yaml:"max_wins_per_day_per_account"`
	MaxWinsPerShift         *int64    `json:"max_wins_per_shift" yaml:"max_wins_per_shift"`
	DailyBudget             *int64    `json:"daily_budget" yaml:"daily_budget"`
	CreatedAt               time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" yaml:"updated_at"`
	CreatedBy               *string   `json:"created_by" yaml:"created_by"`
}

// Policy 取出試算需要的欄位。
func (c *Config) Policy() Policy {
	if c == nil {
		return Policy{}
	}
	return Policy{
		ChancePercent:           c.ChancePercent,
		RewardAmount:            c.RewardAmount,
		MaxWinsPerAccountPerDay: c.MaxWinsPerDayPerAccount,
		MaxWinsPerShift:         c.MaxWinsPerShift,
		DailyBudget:             c.DailyBudget,
	}
}

// UpsertRequest 新增或覆寫設定的請求體。
type UpsertRequest struct {
	PubID                   int64   `json:"pub_id" yaml:"pub_id"`
	Enabled                 bool    `json:"enabled" yaml:"enabled"`
	ChancePercent           float64 `json:"chance_percent" yaml:"chance_percent"`
	RewardAmount            int64   `json:"reward_amount" yaml:"reward_amount"`
	MinPourVolume           *int64  `json:"min_pour_volume,omitempty" yaml:"min_pour_volume,omitempty"`
	MinPourCost             *int64  `json:"min_pour_cost,omitempty" yaml:"min_pour_cost,omitempty"`
	MaxWinsPerDayPerAccount *int64  `json:"max_wins_per_day_per_account,omitempty" yaml:"max_wins_per_day_per_account,omitempty"`
	MaxWinsPerShift         *int64  `json:"max_wins_per_shift,omitempty" yaml:"max_wins_per_shift,omitempty"`
	DailyBudget             *int64  `json:"daily_budget,omitempty" yaml:"daily_budget,omitempty"`
}

// NewUpsertRequest 以 Policy 組出請求；最低倒酒量/金額門檻不屬於 Policy，另外帶入。
func NewUpsertRequest(pubID int64, enabled bool, p Policy, minPourVolume, minPourCost *int64) UpsertRequest {
	return UpsertRequest{
		PubID:                   pubID,
		Enabled:                 enabled,
		ChancePercent:           p.ChancePercent,
		RewardAmount:            p.RewardAmount,
		MinPourVolume:           minPourVolume,
		MinPourCost:             minPourCost,
		MaxWinsPerDayPerAccount: p.MaxWinsPerAccountPerDay,
		MaxWinsPerShift:         p.MaxWinsPerShift,
		DailyBudget:             p.DailyBudget,
	}
}

// Policy 取出請求中的政策部分。
func (u UpsertRequest) Policy() Policy {
	return Policy{
		ChancePercent:           u.ChancePercent,
		RewardAmount:            u.RewardAmount,
		MaxWinsPerAccountPerDay: u.MaxWinsPerDayPerAccount,
		MaxWinsPerShift:         u.MaxWinsPerShift,
		DailyBudget:             u.DailyBudget,
	}
}
