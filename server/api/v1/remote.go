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
	"strings"

	"github.com/zintix-labs/pourlab/backend"
	"github.com/zintix-labs/pourlab/dto"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/reward"
	"github.com/zintix-labs/pourlab/stats"
)

// RemoteProjection GET /v1/remote/{pubID}/projection
//
// 以呼叫端的 Bearer token 向 CyberTap 後台讀取目前設定並試算；後台沒有設定時 config 與 projection 為 null。
func (h *Handler) RemoteProjection(w http.ResponseWriter, r *http.Request) {
	if h.remote == nil {
		h.fail(w, "remote projection", errs.NewWarn("backend is not configured"))
		return
	}
	id, err := pubIDParam(r)
	if err != nil {
		h.fail(w, "remote projection", err)
		return
	}
	token, ok := bearer(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.fail(w, "remote projection", &unauthorized{})
		return
	}
	a, err := dto.AssumptionsFromQuery(r.URL.Query(), reward.DefaultAssumptions())
	if err != nil {
		h.fail(w, "remote projection", err)
		return
	}

	cfg, err := h.remote.GetLuckyPour(r.Context(), backend.StaticToken(token), id)
	if err != nil {
		h.fail(w, "remote projection", err)
		return
	}
	resp := dto.RemoteProjectionResponse{PubID: id, Config: cfg}
	var table any
	if cfg != nil {
		rep := stats.NewProjectionReport("", cfg.Policy(), a)
		pr := dto.NewProjectionResponse(rep)
		resp.Projection = &pr
		table = rep
	}
	h.respond(w, r, resp, table)
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

type unauthorized struct{}

func (unauthorized) Error() string   { return "missing bearer token" }
func (unauthorized) HTTPStatus() int { return http.StatusUnauthorized }
