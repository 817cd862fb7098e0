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

package dto

import (
	"github.com/zintix-labs/pourlab/catalog"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/montecarlo"
	"github.com/zintix-labs/pourlab/projection"
	"github.com/zintix-labs/pourlab/reward"
	"github.com/zintix-labs/pourlab/stats"
)

// Problem 政策未通過儲存前檢查時的說明；試算仍會照常回傳。
type Problem struct {
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message" yaml:"message"`
}

type ProjectionResponse struct {
	stats.ProjectionReport `yaml:",inline"`
	Problem                *Problem `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// NewProjectionResponse 試算並附上儲存前檢查的結果。
func NewProjectionResponse(rep *stats.ProjectionReport) ProjectionResponse {
	return ProjectionResponse{ProjectionReport: *rep, Problem: problemOf(rep.Policy.Validate())}
}

type PresetsResponse struct {
	Policy               reward.Policy             `json:"policy" yaml:"policy"`
	UniqueAccountsPerDay int64                     `json:"unique_accounts_per_day" yaml:"unique_accounts_per_day"`
	Presets              []projection.PresetResult `json:"presets" yaml:"presets"`
	Problem              *Problem                  `json:"problem,omitempty" yaml:"problem,omitempty"`
}

func NewPresetsResponse(p reward.Policy, accounts int64) PresetsResponse {
	return PresetsResponse{
		Policy:               p,
		UniqueAccountsPerDay: accounts,
		Presets:              projection.ProjectPresets(p, accounts),
		Problem:              problemOf(p.Validate()),
	}
}

type SimulateResponse struct {
	Policy      reward.Policy      `json:"policy" yaml:"policy"`
	Assumptions reward.Assumptions `json:"assumptions" yaml:"assumptions"`
	Report      *montecarlo.Report `json:"report" yaml:"report"`
}

type PubsResponse struct {
	Pubs []catalog.Summary `json:"pubs" yaml:"pubs"`
}

// RemoteProjectionResponse 後台尚未設定時 Config 與 Projection 皆為 null。
type RemoteProjectionResponse struct {
	PubID      int64               `json:"pub_id" yaml:"pub_id"`
	Config     *reward.Config      `json:"config" yaml:"config"`
	Projection *ProjectionResponse `json:"projection" yaml:"projection"`
}

// ErrorBody HTTP 錯誤回應
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func problemOf(err error) *Problem {
	if err == nil {
		return nil
	}
	if e, ok := errs.AsErr(err); ok {
		return &Problem{Field: e.Field, Message: e.Message}
	}
	return &Problem{Message: err.Error()}
}
