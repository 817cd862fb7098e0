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

package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zintix-labs/pourlab/dto"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/montecarlo"
)

// Simulate GET|POST /v1/simulate
//
// 天數與交易總量受 [sim] 組態限制；超過 timeout 時回傳 504。
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSimulateRequest(r)
	if err != nil {
		h.fail(w, "decode simulate request", err)
		return
	}
	cfg := montecarlo.Config{
		Policy:       req.PolicyOrDefault(),
		Assumptions:  req.AssumptionsOrDefault(),
		Days:         req.Days,
		ShiftsPerDay: req.ShiftsPerDay,
	}
	if err := h.bound(cfg); err != nil {
		h.fail(w, "simulate bounds", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.sim.Timeout.Duration)
	defer cancel()
	rep, err := h.pool.Simulate(ctx, cfg, req.Seed)
	if err != nil {
		h.fail(w, "simulate", errs.Wrap(err, "simulate err"))
		return
	}
	resp := dto.SimulateResponse{Policy: cfg.Policy, Assumptions: cfg.Assumptions, Report: rep}
	h.respond(w, r, resp, rep)
}

// bound 服務端的資源上限，比 montecarlo 本身的限制更嚴格。
func (h *Handler) bound(cfg montecarlo.Config) error {
	if cfg.Days < 1 || cfg.Days > h.sim.MaxDays {
		return errs.Invalid("days", fmt.Sprintf("days must be between 1 and %d", h.sim.MaxDays))
	}
	if cfg.ShiftsPerDay < 1 || cfg.ShiftsPerDay > montecarlo.MaxShiftsPerDay {
		return errs.Invalid("shifts_per_day", fmt.Sprintf("shifts per day must be between 1 and %d", montecarlo.MaxShiftsPerDay))
	}
	if cfg.Assumptions.TransactionsPerDay > 0 && int64(cfg.Days)*cfg.Assumptions.TransactionsPerDay > h.sim.MaxTransactions {
		return errs.Invalid("transactions_per_day", fmt.Sprintf("days × transactions per day must be <= %d", h.sim.MaxTransactions))
	}
	return nil
}
