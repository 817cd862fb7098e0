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

package main

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/pourlab/errs"
)

const pprofDir = "build/profiling" // pprof檔案寫入路徑

// runProfiled 依 mode 決定是否包一層 profiling；未知的 mode 直接執行。
//
// 可以作性能分析，也可以拿來做構建時給pgo的優化blueprint
//
//	go run ./cmd/run -sim -days 3660 -tx 100000 -p cpu
func runProfiled(mode string, exe func() error) error {
	switch mode {
	case "cpu":
		return profileCPU(exe)
	case "heap", "allocs":
		return profileAfter(mode, exe)
	default:
		return exe()
	}
}

func create(name string) (*os.File, error) {
	if err := os.MkdirAll(pprofDir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create pprof dir")
	}
	f, err := os.Create(filepath.Join(pprofDir, name))
	if err != nil {
		return nil, errs.Wrap(err, "create "+name)
	}
	return f, nil
}

func profileCPU(exe func() error) error {
	f, err := create("cpu.pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// profileAfter 在 exe() 後寫出 heap（in-use）或 allocs（累積配置）快照。
// heap 會先 GC 一次，讓快照貼近 live objects。
func profileAfter(mode string, exe func() error) error {
	if err := exe(); err != nil {
		return err
	}
	f, err := create(mode + ".pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if mode == "heap" {
		runtime.GC()
	}
	prof := pprof.Lookup(mode)
	if prof == nil {
		return errs.Fatalf("unknown profile %q", mode)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+mode+" profile")
	}
	return nil
}
