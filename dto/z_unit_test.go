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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/reward"
	"github.com/zintix-labs/pourlab/stats"
)

func TestDecodeProjectionRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/projection?chance_percent=10&reward_amount=300&daily_budget=1500&transactions_per_day=400", nil)
	req, err := DecodeProjectionRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, a := req.PolicyOrDefault(), req.AssumptionsOrDefault()
	if p.ChancePercent != 10 || p.RewardAmount != 300 || p.DailyBudget == nil || *p.DailyBudget != 1500 {
		t.Fatalf("unexpected policy: %+v", p)
	}
	if p.MaxWinsPerShift != nil || p.MaxWinsPerAccountPerDay != nil {
		t.Fatalf("absent caps must stay unlimited: %+v", p)
	}
	if a.TransactionsPerDay != 400 || a.UniqueAccountsPerDay != 30 {
		t.Fatalf("unexpected assumptions: %+v", a)
	}
}

func TestDecodeProjectionRequestPOST(t *testing.T) {
	payload := map[string]any{
		"policy":      map[string]any{"chance_percent": 20, "reward_amount": 500, "max_wins_per_day_per_account": 1},
		"assumptions": map[string]any{"transactions_per_day": 100, "unique_accounts_per_day": 10},
	}
	data, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/v1/projection", bytes.NewReader(data))
	req, err := DecodeProjectionRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := req.PolicyOrDefault(); p.MaxWinsPerAccountPerDay == nil || *p.MaxWinsPerAccountPerDay != 1 {
		t.Fatalf("unexpected policy: %+v", p)
	}

	// 空 body 取預設值
	r = httptest.NewRequest(http.MethodPost, "/v1/projection", strings.NewReader(""))
	req, err = DecodeProjectionRequest(r)
	if err != nil {
		t.Fatalf("empty body: %v", err)
	}
	if req.PolicyOrDefault() != reward.DefaultPolicy() {
		t.Fatalf("empty body should use defaults")
	}
}

func TestDecodeRejects(t *testing.T) {
	data := []byte(`{"policy":{"chance_percent":5,"reward_amount":500},"unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/projection", bytes.NewReader(data))
	if _, err := DecodeProjectionRequest(r); !errs.IsWarn(err) {
		t.Fatalf("expected warn for unknown field, got %v", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/v1/projection?reward_amount=abc", nil)
	_, err := DecodeProjectionRequest(r)
	e, ok := errs.AsErr(err)
	if !ok || e.Field != "reward_amount" {
		t.Fatalf("expected reward_amount field error, got %v", err)
	}

	r = httptest.NewRequest(http.MethodDelete, "/v1/projection", nil)
	if _, err := DecodeProjectionRequest(r); err == nil {
		t.Fatal("DELETE should be rejected")
	}
}

func TestDecodePresetRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/projection/presets?unique_accounts_per_day=50", nil)
	req, err := DecodePresetRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.Accounts() != 50 {
		t.Fatalf("accounts = %d", req.Accounts())
	}
	r = httptest.NewRequest(http.MethodPost, "/v1/projection/presets", strings.NewReader(`{}`))
	req, err = DecodePresetRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.Accounts() != 30 {
		t.Fatalf("default accounts = %d", req.Accounts())
	}
}

func TestDecodeSimulateRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/simulate?seed=42&days=10", nil)
	req, err := DecodeSimulateRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.Seed == nil || *req.Seed != 42 || req.Days != 10 || req.ShiftsPerDay != DefaultSimShifts {
		t.Fatalf("unexpected request: %+v", req)
	}

	r = httptest.NewRequest(http.MethodPost, "/v1/simulate", strings.NewReader(`{"shifts_per_day":3}`))
	req, err = DecodeSimulateRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.Seed != nil || req.Days != DefaultSimDays || req.ShiftsPerDay != 3 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeSimulateRequestBounds(t *testing.T) {
	cases := []struct {
		method, target, body, field string
	}{
		{http.MethodGet, "/v1/simulate?shifts_per_day=1099511627776", "", "shifts_per_day"},
		{http.MethodGet, "/v1/simulate?shifts_per_day=0", "", "shifts_per_day"},
		{http.MethodGet, "/v1/simulate?shifts_per_day=25", "", "shifts_per_day"},
		{http.MethodGet, "/v1/simulate?days=-1", "", "days"},
		{http.MethodPost, "/v1/simulate", `{"shifts_per_day":1125899906842624}`, "shifts_per_day"},
		{http.MethodPost, "/v1/simulate", `{"shifts_per_day":-2}`, "shifts_per_day"},
		{http.MethodPost, "/v1/simulate", `{"days":100000}`, "days"},
	}
	for _, c := range cases {
		r := httptest.NewRequest(c.method, c.target, strings.NewReader(c.body))
		_, err := DecodeSimulateRequest(r)
		e, ok := errs.AsErr(err)
		if !ok || !errs.IsWarn(err) || e.Field != c.field {
			t.Fatalf("%s %s %s: want %s warn, got %v", c.method, c.target, c.body, c.field, err)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/v1/simulate?shifts_per_day=24", nil)
	req, err := DecodeSimulateRequest(r)
	if err != nil || req.ShiftsPerDay != 24 {
		t.Fatalf("24 shifts should pass: %+v %v", req, err)
	}
}

func TestProjectionResponseProblem(t *testing.T) {
	p := reward.DefaultPolicy()
	p.ChancePercent = 0
	resp := NewProjectionResponse(stats.NewProjectionReport("", p, reward.DefaultAssumptions()))
	if resp.Problem == nil || resp.Problem.Field != "chance_percent" {
		t.Fatalf("problem = %+v", resp.Problem)
	}
	if resp.Result.Daily.Wins != 0 {
		t.Fatal("degenerate policy should project zero")
	}

	data, err := json.Marshal(NewProjectionResponse(stats.NewProjectionReport("", reward.DefaultPolicy(), reward.DefaultAssumptions())))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Contains(s, "problem") || !strings.Contains(s, `"limiter":"none"`) {
		t.Fatalf("unexpected json: %s", s)
	}
}
