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

package projection

import "github.com/zintix-labs/pourlab/reward"

// Metrics 試算結果的衍生指標，只供呈現使用。
type Metrics struct {
	EffectiveWinRate   float64 `json:"effective_win_rate" yaml:"effective_win_rate"`     // 套用上限後的實際中獎率(%)
	CostPerTransaction float64 `json:"cost_per_transaction" yaml:"cost_per_transaction"` // 平均每筆交易成本(grosze)
}

// MetricsOf 交易量 <= 0 時兩個指標皆為 0。
func MetricsOf(r Result, a reward.Assumptions) Metrics {
	if a.TransactionsPerDay <= 0 {
		return Metrics{}
	}
	tx := float64(a.TransactionsPerDay)
	return Metrics{
		EffectiveWinRate:   r.Daily.Wins / tx * 100,
		CostPerTransaction: float64(r.Daily.Cost) / tx,
	}
}

// PresetResult 單一預設流量的試算。
type PresetResult struct {
	Preset  reward.TrafficPreset `json:"preset" yaml:"preset"`
	Result  Result               `json:"result" yaml:"result"`
	Metrics Metrics              `json:"metrics" yaml:"metrics"`
}

// ProjectPresets 以相同帳號數對每個預設流量各跑一次試算，順序與 reward.Presets 相同。
func ProjectPresets(p reward.Policy, accounts int64) []PresetResult {
	ps := reward.Presets()
	out := make([]PresetResult, len(ps))
	for i, tp := range ps {
		a := tp.Assumptions(accounts)
		r := Project(p, a)
		out[i] = PresetResult{Preset: tp, Result: r, Metrics: MetricsOf(r, a)}
	}
	return out
}
