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

package stats

import (
	"fmt"
	"time"

	"github.com/zintix-labs/pourlab/montecarlo"
	"github.com/zintix-labs/pourlab/projection"
	"github.com/zintix-labs/pourlab/reward"
	"golang.org/x/text/message"
)

// ProjectionReport 一次試算的完整輸入與輸出，HTTP 與 CLI 共用。
type ProjectionReport struct {
	Title       string             `json:"title,omitempty" yaml:"title,omitempty"`
	Policy      reward.Policy      `json:"policy" yaml:"policy"`
	Assumptions reward.Assumptions `json:"assumptions" yaml:"assumptions"`
	Result      projection.Result  `json:"result" yaml:"result"`
	Metrics     projection.Metrics `json:"metrics" yaml:"metrics"`
}

// NewProjectionReport 執行試算並組出報表。
func NewProjectionReport(title string, p reward.Policy, a reward.Assumptions) *ProjectionReport {
	r := projection.Project(p, a)
	return &ProjectionReport{
		Title:       title,
		Policy:      p,
		Assumptions: a,
		Result:      r,
		Metrics:     projection.MetricsOf(r, a),
	}
}

// Table 試算結果表：三個期間 + 衍生指標。
func (pr *ProjectionReport) Table() string {
	p := message.NewPrinter(lang)
	title := pr.Title
	if title == "" {
		title = "Lucky Pour"
	}
	rows := [][]string{{"Horizon", "Wins", "Cost"}}
	for _, h := range pr.Result.Horizons() {
		rows = append(rows, []string{horizonLabel(h.Days), "~" + FormatWins(h.Wins), FormatMinor(h.Cost)})
	}
	out := fmtGrid(title, rows)

	keys := []string{"Chance", "Reward", "Per Account/Day", "Per Shift", "Daily Budget", "Transactions/Day", "Accounts/Day", "Effective Win Rate", "Cost/Transaction", "Limited By"}
	msg := map[string]string{
		"Chance":             p.Sprintf("%v %%", pr.Policy.ChancePercent),
		"Reward":             FormatMinor(pr.Policy.RewardAmount),
		"Per Account/Day":    limitStr(pr.Policy.MaxWinsPerAccountPerDay, false),
		"Per Shift":          limitStr(pr.Policy.MaxWinsPerShift, false),
		"Daily Budget":       limitStr(pr.Policy.DailyBudget, true),
		"Transactions/Day":   p.Sprintf("%d", pr.Assumptions.TransactionsPerDay),
		"Accounts/Day":       p.Sprintf("%d", pr.Assumptions.UniqueAccountsPerDay),
		"Effective Win Rate": p.Sprintf("%.1f %%", pr.Metrics.EffectiveWinRate),
		"Cost/Transaction":   FormatMinorFloat(pr.Metrics.CostPerTransaction),
		"Limited By":         pr.Result.Limiter.String(),
	}
	return out + fmtTable("Inputs", keys, msg)
}

// PresetTable 各預設流量的每日 / 31 日成本對照表。
func PresetTable(results []projection.PresetResult) string {
	rows := [][]string{{"Preset", "Tx/Day", "Daily Wins", "Daily Cost", "31d Cost", "Win Rate", "Limited By"}}
	p := message.NewPrinter(lang)
	for _, r := range results {
		rows = append(rows, []string{
			r.Preset.Label,
			p.Sprintf("%d", r.Preset.TransactionsPerDay),
			FormatWins(r.Result.Daily.Wins),
			FormatMinor(r.Result.Daily.Cost),
			FormatMinor(r.Result.Monthly.Cost),
			p.Sprintf("%.1f %%", r.Metrics.EffectiveWinRate),
			r.Result.Limiter.String(),
		})
	}
	return fmtGrid("Traffic Presets", rows)
}

// SimTable 模擬報表；used < 0 時不輸出用時。
func SimTable(r *montecarlo.Report, used time.Duration) string {
	p := message.NewPrinter(lang)
	keys := []string{"Seed", "Days", "Shifts/Day", "Transactions", "Hits", "Wins", "Cost", "Denied (account)", "Denied (shift)", "Denied (budget)", "Daily Wins", "Daily Wins 95% CI", "Daily Cost", "Projected Daily", "Deviation"}
	msg := map[string]string{
		"Seed":              fmt.Sprintf("%d", r.Seed),
		"Days":              p.Sprintf("%d", r.Days),
		"Shifts/Day":        p.Sprintf("%d", r.ShiftsPerDay),
		"Transactions":      p.Sprintf("%d", r.Transactions),
		"Hits":              p.Sprintf("%d", r.Hits),
		"Wins":              p.Sprintf("%d", r.Wins),
		"Cost":              FormatMinor(r.Cost),
		"Denied (account)":  p.Sprintf("%d", r.DeniedAccount),
		"Denied (shift)":    p.Sprintf("%d", r.DeniedShift),
		"Denied (budget)":   p.Sprintf("%d", r.DeniedBudget),
		"Daily Wins":        p.Sprintf("%.2f ± %.2f", r.DailyWins.Mean, r.DailyWins.Std),
		"Daily Wins 95% CI": p.Sprintf("[%.2f, %.2f]", r.DailyWins.CI.Lo, r.DailyWins.CI.Hi),
		"Daily Cost":        FormatMinorFloat(r.DailyCost.Mean),
		"Projected Daily":   FormatWins(r.Projected.Wins) + " / " + FormatMinor(r.Projected.Cost),
		"Deviation":         p.Sprintf("%+.2f %%", 100*r.Deviation()),
	}
	out := fmtTable("Monte Carlo", keys, msg)
	if used >= 0 {
		out = formatDuration(used, r.Days) + out
	}
	return out
}

func horizonLabel(days int) string {
	switch days {
	case projection.DaysDaily:
		return "Daily"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

func limitStr(v *int64, money bool) string {
	if v == nil {
		return "unlimited"
	}
	if money {
		return FormatMinor(*v)
	}
	return message.NewPrinter(lang).Sprintf("%d", *v)
}
