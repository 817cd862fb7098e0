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
	"net/http"

	"github.com/zintix-labs/pourlab/dto"
	"github.com/zintix-labs/pourlab/stats"
)

// Projection GET|POST /v1/projection
//
// 試算對任何輸入都有定義；政策若無法通過儲存前檢查，會在 problem 欄位說明，但仍回傳試算結果。
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeProjectionRequest(r)
	if err != nil {
		h.fail(w, "decode projection request", err)
		return
	}
	rep := stats.NewProjectionReport("", req.PolicyOrDefault(), req.AssumptionsOrDefault())
	h.respond(w, r, dto.NewProjectionResponse(rep), rep)
}

// Presets GET|POST /v1/projection/presets
func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodePresetRequest(r)
	if err != nil {
		h.fail(w, "decode preset request", err)
		return
	}
	resp := dto.NewPresetsResponse(req.PolicyOrDefault(), req.Accounts())
	h.respond(w, r, resp, resp.Presets)
}
