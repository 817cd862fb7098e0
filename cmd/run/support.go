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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/montecarlo"
	"github.com/zintix-labs/pourlab/projection"
	"github.com/zintix-labs/pourlab/reward"
	"github.com/zintix-labs/pourlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	policyFile string
	policy     reward.Policy
	assume     reward.Assumptions
	format     string
	presets    bool

	sim     bool
	days    int
	shifts  int
	workers int
	seed    int64

	pprofmode string
}

// limitFlag 可選的上限；未給值時為 nil（不限）。
type limitFlag struct{ p **int64 }

func (f limitFlag) String() string {
	if f.p == nil || *f.p == nil {
		return "unlimited"
	}
	return strconv.FormatInt(**f.p, 10)
}

func (f limitFlag) Set(s string) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f.p = reward.Limit(v)
	return nil
}

func bindVar() {
	p, a := reward.DefaultPolicy(), reward.DefaultAssumptions()
	cfg.policy, cfg.assume = p, a

	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.policyFile, "policy", "", "pub policy file (.yaml/.json/.toml); overrides the policy flags")
	flag.Float64Var(&cfg.policy.ChancePercent, "chance", p.ChancePercent, "win chance in percent (0, 100]")
	flag.Int64Var(&cfg.policy.RewardAmount, "reward", p.RewardAmount, "reward amount in grosze")
	flag.Var(limitFlag{&cfg.policy.MaxWinsPerAccountPerDay}, "account-cap", "max wins per account per day")
	flag.Var(limitFlag{&cfg.policy.MaxWinsPerShift}, "shift-cap", "max wins per shift")
	flag.Var(limitFlag{&cfg.policy.DailyBudget}, "budget", "daily budget in grosze")
	flag.Int64Var(&cfg.assume.TransactionsPerDay, "tx", a.TransactionsPerDay, "transactions per day")
	flag.Int64Var(&cfg.assume.UniqueAccountsPerDay, "accounts", a.UniqueAccountsPerDay, "unique accounts per day")
	flag.StringVar(&cfg.format, "format", "text", "output: text|json|yaml")
	flag.BoolVar(&cfg.presets, "presets", false, "also project the traffic presets")

	flag.BoolVar(&cfg.sim, "sim", false, "run the Monte Carlo cross-check")
	flag.IntVar(&cfg.days, "days", 31, "simulated days")
	flag.IntVar(&cfg.shifts, "shifts", 1, "shifts per day")
	flag.IntVar(&cfg.workers, "worker", 1, "number of workers")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// 這裡解析並分支要執行的工作
func execute() error {
	title, err := cfg.load()
	if err != nil {
		return err
	}
	render, err := stats.RenderByName(cfg.format)
	if err != nil {
		return err
	}
	_, text := render.(*stats.TextRender)

	green := "\033[1;32m"
	yellow := "\033[33m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	rep := stats.NewProjectionReport(title, cfg.policy, cfg.assume)
	if err := render.Write(os.Stdout, rep); err != nil {
		return err
	}
	if err := cfg.policy.Validate(); err != nil && text {
		p.Printf("%swarning: this policy would be rejected on save: %v%s\n", yellow, err, reset)
	}

	if cfg.presets {
		res := projection.ProjectPresets(cfg.policy, cfg.assume.UniqueAccountsPerDay)
		if err := render.Write(os.Stdout, res); err != nil {
			return err
		}
	}

	if !cfg.sim {
		return nil
	}
	if text {
		p.Printf("%s[SIM] [DAYS:%d] [SHIFTS:%d] [WORKERS:%d] [TX:%d]%s\n", green, cfg.days, cfg.shifts, cfg.workers, int64(cfg.days)*cfg.assume.TransactionsPerDay, reset)
	}
	mc := montecarlo.Config{
		Policy:       cfg.policy,
		Assumptions:  cfg.assume,
		Days:         cfg.days,
		ShiftsPerDay: cfg.shifts,
		Workers:      cfg.workers,
	}
	var s *montecarlo.Simulator
	if cfg.seed < 0 {
		s, err = montecarlo.New(mc)
	} else {
		s, err = montecarlo.NewWithSeed(mc, cfg.seed)
	}
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	sr, used, err := s.RunContext(ctx, text)
	if err != nil {
		return err
	}
	if text {
		_, err = fmt.Fprint(os.Stdout, stats.SimTable(sr, used))
		return err
	}
	return render.Write(os.Stdout, sr)
}

// load 讀入政策檔（若有），回傳報表標題。
func (cfg *config) load() (string, error) {
	if cfg.policyFile == "" {
		return "", cfg.assume.Validate()
	}
	raw, err := os.ReadFile(cfg.policyFile)
	if err != nil {
		return "", errs.Wrap(err, "read policy file")
	}
	s, err := reward.ParseSettingByExt(filepath.Base(cfg.policyFile), raw)
	if err != nil {
		return "", err
	}
	cfg.policy = s.Policy
	// 命令列有給流量時以命令列為準
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if s.Assumptions != nil {
		if !set["tx"] {
			cfg.assume.TransactionsPerDay = s.Assumptions.TransactionsPerDay
		}
		if !set["accounts"] {
			cfg.assume.UniqueAccountsPerDay = s.Assumptions.UniqueAccountsPerDay
		}
	}
	if err := cfg.assume.Validate(); err != nil {
		return "", err
	}
	if s.Name == "" {
		return "", nil
	}
	return fmt.Sprintf("Lucky Pour · %s", s.Name), nil
}
