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

// Package catalog 管理各酒吧的 Lucky Pour 設定檔目錄。
//
// 設定檔來源一律為 fs.FS（go:embed 或 os.DirFS），且必須是平坦目錄；
// 每個 .yaml/.yml/.json/.toml 檔案描述一間酒吧的政策。
package catalog

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/reward"
)

var (
	ErrDupID   = errs.NewFatal("duplicate pub id")
	ErrDupName = errs.NewFatal("duplicate pub name")
)

type Entry struct {
	PubID      int64
	Name       string
	ConfigName string
}

type Summary struct {
	PubID        int64   `json:"pub_id" yaml:"pub_id"`
	Name         string  `json:"name" yaml:"name"`
	Enabled      bool    `json:"enabled" yaml:"enabled"`
	ChancePct    float64 `json:"chance_percent" yaml:"chance_percent"`
	RewardAmount int64   `json:"reward_amount" yaml:"reward_amount"`
	Capped       bool    `json:"capped" yaml:"capped"`
}

type Catalog struct {
	byID     map[int64]Entry
	byName   map[string]Entry
	settings map[int64]*reward.Setting
	ids      []int64 // 用來穩定排序
	config   *multiFS
	frozen   bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:     map[int64]Entry{},
		byName:   map[string]Entry{},
		settings: map[int64]*reward.Setting{},
		ids:      make([]int64, 0, 64),
		config:   multFS,
	}, nil
}

// NewAuto 建立目錄並把所有來源中的設定檔解析後註冊，最後凍結。
func NewAuto(cfg ...fs.FS) (*Catalog, error) {
	c, err := New(cfg...)
	if err != nil {
		return nil, err
	}
	for _, name := range c.config.Names() {
		s, err := c.load(name)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("load %s", name))
		}
		if err := c.register(Entry{PubID: s.PubID, Name: s.Name, ConfigName: name}, s); err != nil {
			return nil, err
		}
	}
	c.Freeze()
	return c, nil
}

// Register 以明確的 Entry 註冊設定檔；檔案內的 pub_id / name 必須與 Entry 一致。
func (c *Catalog) Register(metas ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	for _, meta := range metas {
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		s, err := c.load(meta.ConfigName)
		if err != nil {
			return err
		}
		meta.Name = strings.ToLower(strings.TrimSpace(meta.Name))
		if s.PubID != meta.PubID || s.Name != meta.Name {
			return errs.NewFatal(fmt.Sprintf("entry %d/%s does not match file %s (%d/%s)", meta.PubID, meta.Name, meta.ConfigName, s.PubID, s.Name))
		}
		if err := c.register(meta, s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) register(meta Entry, s *reward.Setting) error {
	if _, ok := c.byID[meta.PubID]; ok {
		return ErrDupID
	}
	if _, ok := c.byName[meta.Name]; ok {
		return ErrDupName
	}
	c.byID[meta.PubID] = meta
	c.byName[meta.Name] = meta
	c.settings[meta.PubID] = s
	c.ids = append(c.ids, meta.PubID)
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return nil
}

func (c *Catalog) load(name string) (*reward.Setting, error) {
	src, ok := c.config.GetFS(name)
	if !ok {
		return nil, errs.NewFatal(fmt.Sprintf("config file not found: %s", name))
	}
	raw, err := fs.ReadFile(src, name)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return reward.ParseSettingByExt(name, raw)
}

func (c *Catalog) GetByID(id int64) (Entry, bool) {
	m, ok := c.byID[id]
	return m, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	m, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// SettingByID 回傳設定的副本，呼叫端修改不影響目錄。
func (c *Catalog) SettingByID(id int64) (reward.Setting, error) {
	s, ok := c.settings[id]
	if !ok {
		return reward.Setting{}, errs.NewWarn("pub id does not exist in catalog")
	}
	cp := *s
	if s.Assumptions != nil {
		a := *s.Assumptions
		cp.Assumptions = &a
	}
	return cp, nil
}

func (c *Catalog) SettingByName(name string) (reward.Setting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return reward.Setting{}, errs.NewWarn("pub name does not exist in catalog")
	}
	return c.SettingByID(e.PubID)
}

func (c *Catalog) IDs() []int64 {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]int64(nil), c.ids...)
}

func (c *Catalog) All() []Entry {
	m := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		m = append(m, c.byID[id])
	}
	return m
}

func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, 0, len(c.ids))
	for _, id := range c.ids {
		s := c.settings[id]
		out = append(out, Summary{
			PubID:        s.PubID,
			Name:         s.Name,
			Enabled:      s.Enabled,
			ChancePct:    s.Policy.ChancePercent,
			RewardAmount: s.Policy.RewardAmount,
			Capped:       s.Policy.Capped(),
		})
	}
	return out
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename; no / \\ :)", file))
	}
	if !reward.SupportedExt(file) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, .json or .toml)", file))
	}
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}
	m := &multiFS{
		src:   src,
		index: make(map[string]int, 64),
	}
	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			// 其他檔案（README 等）直接略過
			if !reward.SupportedExt(path) || strings.HasPrefix(path, ".") {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

// Names 依檔名排序，讓 NewAuto 的註冊順序可重現。
func (m *multiFS) Names() []string {
	out := make([]string, 0, len(m.index))
	for name := range m.index {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
