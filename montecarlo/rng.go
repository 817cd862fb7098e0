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

package montecarlo

import (
	"crypto/rand"
	"math"
	"math/big"
	r2 "math/rand/v2"
)

const mask63 = uint64(1<<63) - 1

// randomSeed 以加密亂數產生非負 int64 種子。
func randomSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, err
	}
	return seed.Int64(), nil
}

// daySeed 由基礎種子與天數索引派生子種子。
//
// 每一天的亂數流只取決於 (base, day)，與 worker 數量、排程順序無關，
// 因此同一個種子在任何併發度下都會得到相同的報表。
func daySeed(base int64, day int) int64 {
	x := (uint64(base) & mask63) ^ (uint64(day)*0x9e3779b97f4a7c15)&mask63
	return int64(mix63(x))
}

// newDayRand 以 PCG 建立該天專用的亂數源。
func newDayRand(seed int64) *r2.Rand {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	hi := splitmix64(x)
	lo := splitmix64(x ^ 0xDA942042E4DD58B5)
	return r2.New(r2.NewPCG(hi, lo))
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
