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

// Package pourlab 提供 Lucky Pour 試算引擎的組裝入口。
//
// Pourlab 持有一份凍結後的 catalog（各酒吧的政策設定），並以它為來源提供：
//   - 期望值試算（projection），可指定或沿用設定檔內的流量假設
//   - 預設流量（週一至四 / 週五六 / 週日 / 平均）的對照試算
//   - 逐筆交易的蒙地卡羅模擬器，用來交叉驗證期望值
//
// 設定檔來源一律以 fs.FS 注入（go:embed 或 os.DirFS），Pourlab 本身不處理路徑。
//
//	lab, _ := pourlab.New(os.DirFS("configs"))
//	rep, _ := lab.Project(12, nil)
//	fmt.Print(rep.Table())
package pourlab

import (
	"io/fs"

	"github.com/zintix-labs/pourlab/catalog"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/montecarlo"
	"github.com/zintix-labs/pourlab/projection"
	"github.com/zintix-labs/pourlab/reward"
	"github.com/zintix-labs/pourlab/stats"
)

// Configs 把一或多個設定檔來源打包成 New() 的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Pourlab 在 New 之後即為唯讀，可在多個 goroutine 共用。
type Pourlab struct {
	cat *catalog.Catalog
}

// New 解析所有來源中的設定檔並凍結目錄；任何一個檔案有誤都會直接失敗。
func New(cfgs ...fs.FS) (*Pourlab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cat, err := catalog.NewAuto(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Pourlab{cat: cat}, nil
}

func (p *Pourlab) IDs() []int64 {
	return p.cat.IDs()
}

func (p *Pourlab) Summaries() []catalog.Summary {
	return p.cat.Summaries()
}

func (p *Pourlab) Setting(pubID int64) (reward.Setting, error) {
	return p.cat.SettingByID(pubID)
}

// Project 以 pub 的政策試算；a 為 nil 時使用設定檔內的流量假設。
func (p *Pourlab) Project(pubID int64, a *reward.Assumptions) (*stats.ProjectionReport, error) {
	s, err := p.cat.SettingByID(pubID)
	if err != nil {
		return nil, err
	}
	return project(s, a)
}

func (p *Pourlab) ProjectByName(name string, a *reward.Assumptions) (*stats.ProjectionReport, error) {
	s, err := p.cat.SettingByName(name)
	if err != nil {
		return nil, err
	}
	return project(s, a)
}

// Presets 以 pub 的政策對每個預設流量試算；accounts < 0 時沿用設定檔的帳號數。
func (p *Pourlab) Presets(pubID int64, accounts int64) ([]projection.PresetResult, error) {
	s, err := p.cat.SettingByID(pubID)
	if err != nil {
		return nil, err
	}
	if accounts < 0 {
		accounts = s.Assumptions.UniqueAccountsPerDay
	}
	return projection.ProjectPresets(s.Policy, accounts), nil
}

// SimConfig 以 pub 的政策與流量組出模擬參數。
func (p *Pourlab) SimConfig(pubID int64, days, shifts, workers int) (montecarlo.Config, error) {
	s, err := p.cat.SettingByID(pubID)
	if err != nil {
		return montecarlo.Config{}, err
	}
	return montecarlo.Config{
		Policy:       s.Policy,
		Assumptions:  *s.Assumptions,
		Days:         days,
		ShiftsPerDay: shifts,
		Workers:      workers,
	}, nil
}

func (p *Pourlab) NewSimulator(pubID int64, days, shifts, workers int) (*montecarlo.Simulator, error) {
	cfg, err := p.SimConfig(pubID, days, shifts, workers)
	if err != nil {
		return nil, err
	}
	return montecarlo.New(cfg)
}

// NewSimulatorWithSeed 相同 seed 與設定必定得到相同報表。
func (p *Pourlab) NewSimulatorWithSeed(pubID int64, days, shifts, workers int, seed int64) (*montecarlo.Simulator, error) {
	cfg, err := p.SimConfig(pubID, days, shifts, workers)
	if err != nil {
		return nil, err
	}
	return montecarlo.NewWithSeed(cfg, seed)
}

func project(s reward.Setting, a *reward.Assumptions) (*stats.ProjectionReport, error) {
	use := *s.Assumptions
	if a != nil {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		use = *a
	}
	return stats.NewProjectionReport(s.Name, s.Policy, use), nil
}
