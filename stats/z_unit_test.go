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
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/pourlab/montecarlo"
	"github.com/zintix-labs/pourlab/projection"
	"github.com/zintix-labs/pourlab/reward"
	"gopkg.in/yaml.v3"
)

func TestFormatMinor(t *testing.T) {
	cases := map[int64]string{
		0:       "0.00 zł",
		5:       "0.05 zł",
		2500:    "25.00 zł",
		123456:  "1,234.56 zł",
		-1050:   "-10.50 zł",
		7750000: "77,500.00 zł",
	}
	for in, want := range cases {
		if got := FormatMinor(in); got != want {
			t.Fatalf("FormatMinor(%d) = %q, want %q", in, got, want)
		}
	}
	if got := FormatMinorFloat(1249.6); got != "12.50 zł" {
		t.Fatalf("FormatMinorFloat = %q", got)
	}
	if got := FormatWins(5); got != "5.00" {
		t.Fatalf("FormatWins = %q", got)
	}
}

func TestProjectionTable(t *testing.T) {
	p := reward.DefaultPolicy()
	p.DailyBudget = reward.Limit(2000)
	pr := NewProjectionReport("Pub 1", p, reward.DefaultAssumptions())
	if pr.Result.Limiter != projection.LimiterBudget {
		t.Fatalf("limiter = %v", pr.Result.Limiter)
	}
	out := pr.Table()
	for _, want := range []string{"Pub 1", "Daily", "7 days", "31 days", "4.00", "20.00 zł", "140.00 zł", "620.00 zł", "budget", "unlimited"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	// 每列寬度一致
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		t.Fatal("table too short")
	}
}

func TestFmtGridAligned(t *testing.T) {
	out := fmtGrid("T", [][]string{{"a", "bb"}, {"ccc", "d"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	w := len(lines[0])
	for _, l := range lines {
		if len(l) != w {
			t.Fatalf("misaligned grid:\n%s", out)
		}
	}
}

func TestPresetTable(t *testing.T) {
	out := PresetTable(projection.ProjectPresets(reward.DefaultPolicy(), 30))
	for _, tp := range reward.Presets() {
		if !strings.Contains(out, tp.Label) {
			t.Fatalf("preset table missing %q", tp.Label)
		}
	}
	if !strings.Contains(out, "222.50 zł") {
		t.Fatalf("fri-sat daily cost missing:\n%s", out)
	}
}

func TestSimTable(t *testing.T) {
	r := &montecarlo.Report{Seed: 7, Days: 10, ShiftsPerDay: 1, Wins: 50, Cost: 25000}
	out := SimTable(r, time.Second)
	if !strings.Contains(out, "used:") || !strings.Contains(out, "250.00 zł") {
		t.Fatalf("unexpected sim table:\n%s", out)
	}
	if strings.Contains(SimTable(r, -1), "used:") {
		t.Fatal("negative duration should hide timing")
	}
}

func TestRenders(t *testing.T) {
	pr := NewProjectionReport("", reward.DefaultPolicy(), reward.DefaultAssumptions())

	var buf bytes.Buffer
	if err := (&JsonRender{}).Write(&buf, pr); err != nil {
		t.Fatal(err)
	}
	var back ProjectionReport
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.Result != pr.Result {
		t.Fatalf("json result = %+v", back.Result)
	}

	buf.Reset()
	if err := (&YAMLRender{}).Write(&buf, map[string]any{"wins": []float64{1, 2}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[1, 2]") {
		t.Fatalf("yaml leaf list should be flow style: %s", buf.String())
	}
	var m map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	if err := (&TextRender{}).Write(&buf, pr); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Lucky Pour") {
		t.Fatal("default title missing")
	}
	if err := (&TextRender{}).Write(&buf, 1); err == nil {
		t.Fatal("unsupported type should fail")
	}
}

func TestRenderByName(t *testing.T) {
	for _, n := range []string{"", "text", "json", "yaml"} {
		if _, err := RenderByName(n); err != nil {
			t.Fatalf("%q: %v", n, err)
		}
	}
	if _, err := RenderByName("xml"); err == nil {
		t.Fatal("xml should be rejected")
	}
}
