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

package demo

import (
	"testing"

	"github.com/zintix-labs/pourlab/projection"
)

func TestDemoCatalog(t *testing.T) {
	lab, err := New()
	if err != nil {
		t.Fatal(err)
	}
	ids := lab.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("ids = %v", ids)
	}

	rep, err := lab.Project(2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Result.Daily.Cost != 2000 || rep.Result.Limiter != projection.LimiterBudget {
		t.Fatalf("old-town daily = %+v", rep.Result)
	}

	// 10 個帳號、每帳號每天 1 次
	rep, err = lab.ProjectByName("riverside", nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Result.Daily.Wins != 10 || rep.Result.Limiter != projection.LimiterAccount {
		t.Fatalf("riverside daily = %+v", rep.Result)
	}
}

func TestDemoServerConfig(t *testing.T) {
	sc, err := NewServerConfig()
	if err != nil {
		t.Fatal(err)
	}
	if err := sc.Valid(); err != nil {
		t.Fatal(err)
	}
	if sc.Addr == "" || sc.Sim.MaxDays == 0 {
		t.Fatalf("defaults not filled: %+v", sc)
	}
}
