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
	"github.com/zintix-labs/pourlab/reward"
)

// Pubs GET /v1/pubs
func (h *Handler) Pubs(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, dto.PubsResponse{Pubs: h.lab.Summaries()}, nil)
}

// PubProjection GET /v1/pubs/{pubID}/projection
//
// query 未帶流量假設時使用設定檔內的值，帶了則以設定檔為底覆寫。
func (h *Handler) PubProjection(w http.ResponseWriter, r *http.Request) {
	id, err := pubIDParam(r)
	if err != nil {
		h.fail(w, "pub projection", err)
		return
	}
	s, err := h.lab.Setting(id)
	if err != nil {
		h.fail(w, "pub projection", err)
		return
	}
	a, err := dto.AssumptionsFromQuery(r.URL.Query(), baseAssumptions(s))
	if err != nil {
		h.fail(w, "pub projection", err)
		return
	}
	rep, err := h.lab.Project(id, &a)
	if err != nil {
		h.fail(w, "pub projection", err)
		return
	}
	h.respond(w, r, dto.NewProjectionResponse(rep), rep)
}

// PubPresets GET /v1/pubs/{pubID}/presets
func (h *Handler) PubPresets(w http.ResponseWriter, r *http.Request) {
	id, err := pubIDParam(r)
	if err != nil {
		h.fail(w, "pub presets", err)
		return
	}
	s, err := h.lab.Setting(id)
	if err != nil {
		h.fail(w, "pub presets", err)
		return
	}
	a, err := dto.AssumptionsFromQuery(r.URL.Query(), baseAssumptions(s))
	if err != nil {
		h.fail(w, "pub presets", err)
		return
	}
	resp := dto.NewPresetsResponse(s.Policy, a.UniqueAccountsPerDay)
	h.respond(w, r, resp, resp.Presets)
}

func baseAssumptions(s reward.Setting) reward.Assumptions {
	if s.Assumptions == nil {
		return reward.DefaultAssumptions()
	}
	return *s.Assumptions
}
