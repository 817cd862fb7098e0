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

// Package dto 定義 HTTP 邊界的請求解碼與回應結構。
package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/montecarlo"
	"github.com/zintix-labs/pourlab/reward"
)

// 防止 body 過大
const maxBody = 1 << 20

const (
	DefaultSimDays   = 31
	DefaultSimShifts = 1
)

// ProjectionRequest policy / assumptions 缺省時使用儀表板的預設值。
type ProjectionRequest struct {
	Policy      *reward.Policy      `json:"policy,omitempty"`
	Assumptions *reward.Assumptions `json:"assumptions,omitempty"`
}

// PresetRequest 每個預設流量共用同一個帳號數。
type PresetRequest struct {
	Policy               *reward.Policy `json:"policy,omitempty"`
	UniqueAccountsPerDay *int64         `json:"unique_accounts_per_day,omitempty"`
}

// SimulateRequest seed 缺省時由伺服器產生，並在回應中帶回。
type SimulateRequest struct {
	Policy       *reward.Policy      `json:"policy,omitempty"`
	Assumptions  *reward.Assumptions `json:"assumptions,omitempty"`
	Days         int                 `json:"days,omitempty"`
	ShiftsPerDay int                 `json:"shifts_per_day,omitempty"`
	Seed         *int64              `json:"seed,omitempty"`
}

// PolicyOrDefault 回傳請求內的政策或預設政策。
func (r *ProjectionRequest) PolicyOrDefault() reward.Policy {
	return policyOr(r.Policy)
}

func (r *ProjectionRequest) AssumptionsOrDefault() reward.Assumptions {
	return assumptionsOr(r.Assumptions)
}

func (r *PresetRequest) PolicyOrDefault() reward.Policy {
	return policyOr(r.Policy)
}

func (r *PresetRequest) Accounts() int64 {
	if r.UniqueAccountsPerDay == nil {
		return reward.DefaultAssumptions().UniqueAccountsPerDay
	}
	return *r.UniqueAccountsPerDay
}

func (r *SimulateRequest) PolicyOrDefault() reward.Policy {
	return policyOr(r.Policy)
}

func (r *SimulateRequest) AssumptionsOrDefault() reward.Assumptions {
	return assumptionsOr(r.Assumptions)
}

// DecodeProjectionRequest
//
// 支援：
//   - GET：從 query string 讀取（chance_percent/reward_amount/max_wins_per_day_per_account/
//     max_wins_per_shift/daily_budget/transactions_per_day/unique_accounts_per_day），未提供的欄位取預設值。
//   - POST：JSON body {"policy": {...}, "assumptions": {...}}，未知欄位拒絕。
//
// 這裡只負責解碼，不做政策合法性校驗；試算本身對任何輸入都有定義。
func DecodeProjectionRequest(r *http.Request) (*ProjectionRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(ProjectionRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		p, err := PolicyFromQuery(q)
		if err != nil {
			return nil, err
		}
		a, err := AssumptionsFromQuery(q, reward.DefaultAssumptions())
		if err != nil {
			return nil, err
		}
		req.Policy, req.Assumptions = &p, &a
		return req, nil
	case http.MethodPost:
		if err := decodeJSON(r.Body, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

func DecodePresetRequest(r *http.Request) (*PresetRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(PresetRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		p, err := PolicyFromQuery(q)
		if err != nil {
			return nil, err
		}
		req.Policy = &p
		if v, ok, err := int64Param(q, "unique_accounts_per_day"); err != nil {
			return nil, err
		} else if ok {
			req.UniqueAccountsPerDay = &v
		}
		return req, nil
	case http.MethodPost:
		if err := decodeJSON(r.Body, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeSimulateRequest days / shifts_per_day 缺省時為 31 / 1。
func DecodeSimulateRequest(r *http.Request) (*SimulateRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(SimulateRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		p, err := PolicyFromQuery(q)
		if err != nil {
			return nil, err
		}
		a, err := AssumptionsFromQuery(q, reward.DefaultAssumptions())
		if err != nil {
			return nil, err
		}
		req.Policy, req.Assumptions = &p, &a
		if v, ok, err := countParam(q, "days", montecarlo.MaxDays); err != nil {
			return nil, err
		} else if ok {
			req.Days = v
		}
		if v, ok, err := countParam(q, "shifts_per_day", montecarlo.MaxShiftsPerDay); err != nil {
			return nil, err
		} else if ok {
			req.ShiftsPerDay = v
		}
		if v, ok, err := int64Param(q, "seed"); err != nil {
			return nil, err
		} else if ok {
			req.Seed = &v
		}
	case http.MethodPost:
		if err := decodeJSON(r.Body, req); err != nil {
			return nil, err
		}
		// 0 代表未提供
		if req.Days < 0 || req.Days > montecarlo.MaxDays {
			return nil, errs.Invalid("days", fmt.Sprintf("days must be between 1 and %d", montecarlo.MaxDays))
		}
		if req.ShiftsPerDay < 0 || req.ShiftsPerDay > montecarlo.MaxShiftsPerDay {
			return nil, errs.Invalid("shifts_per_day", fmt.Sprintf("shifts_per_day must be between 1 and %d", montecarlo.MaxShiftsPerDay))
		}
	default:
		return nil, errs.NewWarn("method not allowed")
	}
	if req.Days == 0 {
		req.Days = DefaultSimDays
	}
	if req.ShiftsPerDay == 0 {
		req.ShiftsPerDay = DefaultSimShifts
	}
	return req, nil
}

// PolicyFromQuery 以預設政策為底，覆寫 query 內出現的欄位。
func PolicyFromQuery(q url.Values) (reward.Policy, error) {
	p := reward.DefaultPolicy()
	if s := q.Get("chance_percent"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, errs.Invalid("chance_percent", fmt.Sprintf("invalid chance_percent: %v", err))
		}
		p.ChancePercent = v
	}
	if v, ok, err := int64Param(q, "reward_amount"); err != nil {
		return p, err
	} else if ok {
		p.RewardAmount = v
	}
	for _, f := range []struct {
		key string
		dst **int64
	}{
		{"max_wins_per_day_per_account", &p.MaxWinsPerAccountPerDay},
		{"max_wins_per_shift", &p.MaxWinsPerShift},
		{"daily_budget", &p.DailyBudget},
	} {
		if v, ok, err := int64Param(q, f.key); err != nil {
			return p, err
		} else if ok {
			*f.dst = reward.Limit(v)
		}
	}
	return p, nil
}

// AssumptionsFromQuery 以 base 為底覆寫 query 內出現的欄位。
func AssumptionsFromQuery(q url.Values, base reward.Assumptions) (reward.Assumptions, error) {
	if v, ok, err := int64Param(q, "transactions_per_day"); err != nil {
		return base, err
	} else if ok {
		base.TransactionsPerDay = v
	}
	if v, ok, err := int64Param(q, "unique_accounts_per_day"); err != nil {
		return base, err
	} else if ok {
		base.UniqueAccountsPerDay = v
	}
	return base, nil
}

// HasAssumptions 回報 query 是否帶了任何流量假設。
func HasAssumptions(q url.Values) bool {
	return q.Has("transactions_per_day") || q.Has("unique_accounts_per_day")
}

// countParam 1..limit 的整數參數；出現但超出範圍時回傳 Invalid。
func countParam(q url.Values, key string, limit int) (int, bool, error) {
	v, ok, err := int64Param(q, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v < 1 || v > int64(limit) {
		return 0, false, errs.Invalid(key, fmt.Sprintf("%s must be between 1 and %d", key, limit))
	}
	return int(v), true, nil
}

func int64Param(q url.Values, key string) (int64, bool, error) {
	s := q.Get(key)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, errs.Invalid(key, fmt.Sprintf("invalid %s: %v", key, err))
	}
	return v, true, nil
}

func decodeJSON(body io.Reader, dst any) error {
	if body == nil {
		return errs.NewWarn("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return errs.WrapAs(errs.Warn, err, "invalid json")
	}
	return nil
}

func policyOr(p *reward.Policy) reward.Policy {
	if p == nil {
		return reward.DefaultPolicy()
	}
	return *p
}

func assumptionsOr(a *reward.Assumptions) reward.Assumptions {
	if a == nil {
		return reward.DefaultAssumptions()
	}
	return *a
}
