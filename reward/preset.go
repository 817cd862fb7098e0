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

// TrafficPreset 依歷史資料整理出的典型日交易量。
type TrafficPreset struct {
	Key                string `json:"key" yaml:"key"`
	Label              string `json:"label" yaml:"label"`
	TransactionsPerDay int64  `json:"transactions_per_day" yaml:"transactions_per_day"`
}

var presets = []TrafficPreset{
	{Key: "mon-thu", Label: "Mon–Thu", TransactionsPerDay: 260},
	{Key: "fri-sat", Label: "Fri–Sat", TransactionsPerDay: 890},
	{Key: "sun", Label: "Sun", TransactionsPerDay: 295},
	{Key: "average", Label: "Average", TransactionsPerDay: 400},
}

// Presets 回傳固定順序的預設流量（副本）。
func Presets() []TrafficPreset {
	return append([]TrafficPreset(nil), presets...)
}

// PresetByKey 依 key 取得預設流量。
func PresetByKey(key string) (TrafficPreset, bool) {
	for _, p := range presets {
		if p.Key == key {
			return p, true
		}
	}
	return TrafficPreset{}, false
}

// Assumptions 以預設流量與指定帳號數組出模擬假設。
func (tp TrafficPreset) Assumptions(accounts int64) Assumptions {
	return Assumptions{TransactionsPerDay: tp.TransactionsPerDay, UniqueAccountsPerDay: accounts}
}
