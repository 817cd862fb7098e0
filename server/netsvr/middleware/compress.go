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

package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig Skip 內的路徑前綴不壓縮（例如自行處理壓縮的 /metrics）。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
	Skip      []string
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
	Skip:      []string{"/metrics"},
}

// encoder gzip.Writer 與 zstd.Encoder 的共同行為
type encoder interface {
	io.Writer
	Reset(w io.Writer)
	Close() error
	Flush() error
}

// compressor 每種編碼一個 writer pool
type compressor struct {
	name string
	pool sync.Pool
}

func (c *compressor) get(w io.Writer) encoder {
	e := c.pool.Get().(encoder)
	e.Reset(w)
	return e
}

func (c *compressor) put(e encoder, discard bool) {
	// 無 body 的回應不能帶壓縮 footer
	if discard {
		e.Reset(io.Discard)
	}
	_ = e.Close()
	c.pool.Put(e)
}

// Compression 依 Accept-Encoding 優先選 zstd，其次 gzip。
func Compression(cfg CompressConfig) func(http.Handler) http.Handler {
	zc := &compressor{name: "zstd"}
	zc.pool.New = func() any {
		zw, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(cfg.ZstdLevel), zstd.WithEncoderConcurrency(1))
		if err != nil {
			panic(err)
		}
		return zw
	}
	gc := &compressor{name: "gzip"}
	gc.pool.New = func() any {
		gw, err := gzip.NewWriterLevel(nil, cfg.GzipLevel)
		if err != nil {
			gw = gzip.NewWriter(nil)
		}
		return gw
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || isUpgrade(r) || w.Header().Get("Content-Encoding") != "" || skipped(cfg.Skip, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			accept := r.Header.Get("Accept-Encoding")
			var c *compressor
			switch {
			case strings.Contains(accept, "zstd"):
				c = zc
			case strings.Contains(accept, "gzip"):
				c = gc
			default:
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Encoding", c.name)
			w.Header().Add("Vary", "Accept-Encoding")
			e := c.get(w)
			cw := &compressWriter{ResponseWriter: w, enc: e}
			defer func() { c.put(e, cw.bypass) }()
			next.ServeHTTP(cw, r)
		})
	}
}

type compressWriter struct {
	http.ResponseWriter
	enc    encoder
	bypass bool // 204/304/1xx 不壓縮
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified {
		cw.bypass = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.bypass {
		return cw.ResponseWriter.Write(b)
	}
	cw.Header().Del("Content-Length")
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) Flush() {
	if !cw.bypass {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func isUpgrade(r *http.Request) bool {
	return r.Header.Get("Upgrade") != "" ||
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

func skipped(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
