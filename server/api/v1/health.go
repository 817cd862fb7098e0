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
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/pourlab"
)

type health struct {
	Status  string               `json:"status"`
	Pubs    int                  `json:"pubs"`
	SimPool pourlab.SimPoolStats `json:"sim_pool"`
	Remote  bool                 `json:"remote"`
}

// Healthz GET /healthz；模擬池關閉後回 503。
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	st := h.pool.Stats()
	body := health{Status: "ok", Pubs: len(h.lab.IDs()), SimPool: st, Remote: h.HasRemote()}
	code := http.StatusOK
	if st.Closed {
		body.Status, code = "closing", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
