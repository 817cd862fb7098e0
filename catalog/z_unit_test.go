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

package catalog

import (
	"errors"
	"testing"
	"testing/fstest"
)

const northYAML = `
pub_id: 2
name: North
policy:
  chance_percent: 5
  reward_amount: 500
  daily_budget: 2000
`

const southTOML = `
pub_id = 1
name = "south"
enabled = true

[policy]
chance_percent = 2.5
reward_amount = 1000

[assumptions]
transactions_per_day = 890
unique_accounts_per_day = 200
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"north.yaml": {Data: []byte(northYAML)},
		"south.toml": {Data: []byte(southTOML)},
		"README.md":  {Data: []byte("ignored")},
	}
}

func TestNewAuto(t *testing.T) {
	c, err := NewAuto(testFS())
	if err != nil {
		t.Fatalf("NewAuto: %v", err)
	}
	if !c.IsFrozen() {
		t.Fatalf("auto catalog must be frozen")
	}
	ids := c.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids must be sorted, got %v", ids)
	}
	e, ok := c.GetByName(" NORTH ")
	if !ok || e.PubID != 2 || e.ConfigName != "north.yaml" {
		t.Fatalf("lookup by name failed: %+v", e)
	}
	s, err := c.SettingByID(1)
	if err != nil {
		t.Fatalf("SettingByID: %v", err)
	}
	if s.Assumptions.TransactionsPerDay != 890 || !s.Enabled {
		t.Fatalf("unexpected setting %+v", s)
	}
	s.Assumptions.TransactionsPerDay = 1
	again, _ := c.SettingByID(1)
	if again.Assumptions.TransactionsPerDay != 890 {
		t.Fatalf("SettingByID must return a copy")
	}
	sums := c.Summaries()
	if len(sums) != 2 || sums[1].Name != "north" || !sums[1].Capped || sums[0].Capped {
		t.Fatalf("unexpected summaries %+v", sums)
	}
	if err := c.Register(Entry{PubID: 3, Name: "x", ConfigName: "x.yaml"}); err == nil {
		t.Fatalf("register after freeze must fail")
	}
}

func TestDuplicates(t *testing.T) {
	fsys := testFS()
	fsys["north-copy.json"] = &fstest.MapFile{Data: []byte(`{"pub_id":2,"name":"other","policy":{"chance_percent":1,"reward_amount":1}}`)}
	if _, err := NewAuto(fsys); !errors.Is(err, ErrDupID) {
		t.Fatalf("duplicate pub id expected, got %v", err)
	}

	other := fstest.MapFS{"north.yaml": {Data: []byte(northYAML)}}
	if _, err := NewAuto(testFS(), other); err == nil {
		t.Fatalf("duplicate file name across sources must fail")
	}
}

func TestFlatFS(t *testing.T) {
	fsys := testFS()
	fsys["nested/a.yaml"] = &fstest.MapFile{Data: []byte(northYAML)}
	if _, err := New(fsys); err == nil {
		t.Fatalf("nested directories must be rejected")
	}
}

func TestRegister(t *testing.T) {
	c, err := New(testFS())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Register(Entry{PubID: 2, Name: "north", ConfigName: "north.yaml"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.Register(Entry{PubID: 9, Name: "south", ConfigName: "south.toml"}); err == nil {
		t.Fatalf("mismatched entry must fail")
	}
	if err := c.Register(Entry{PubID: 1, Name: "south", ConfigName: "../south.toml"}); err == nil {
		t.Fatalf("path in config name must fail")
	}
	if _, err := c.SettingByName("south"); err == nil {
		t.Fatalf("unregistered pub must not resolve")
	}
}
