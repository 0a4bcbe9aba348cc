// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

// PercentSource draws uniform integers in [0, 100).
type PercentSource interface {
	Percent() int
}

// DefaultSeed is the seed used when Config.Seed is zero. With this seed the
// split matches the reference tool's unseeded std::default_random_engine.
const DefaultSeed int64 = 1

// Park-Miller "minimal standard" generator constants (minstd_rand0).
const (
	minStdMultiplier = 16807
	minStdModulus    = 2147483647 // 2^31 - 1
	minStdMin        = 1
	minStdMax        = minStdModulus - 1
)

// MinStdSource is a minstd_rand0 linear congruential generator combined with
// the libstdc++ downscaling used by uniform_int_distribution. It is not safe
// for concurrent use.
type MinStdSource struct {
	state uint64
}

// NewMinStdSource seeds a generator. Seeds are reduced modulo 2^31-1 and a
// seed of zero (after reduction) is replaced by 1, matching std::linear_congruential_engine.
func NewMinStdSource(seed int64) *MinStdSource {
	s := seed % minStdModulus
	if s < 0 {
		s += minStdModulus
	}
	if s == 0 {
		s = 1
	}
	return &MinStdSource{state: uint64(s)}
}

// next advances the generator and returns a value in [1, 2^31-2].
func (s *MinStdSource) next() uint64 {
	s.state = (s.state * minStdMultiplier) % minStdModulus
	return s.state
}

// Intn returns a uniform integer in [0, n) using rejection downscaling:
// the generator range is cut into n equal buckets and draws that fall past
// the last full bucket are discarded.
func (s *MinStdSource) Intn(n int) int {
	if n <= 0 {
		panic("recommend: Intn called with non-positive n")
	}
	const genRange = minStdMax - minStdMin
	buckets := uint64(n)
	scaling := uint64(genRange) / buckets
	past := buckets * scaling
	for {
		r := s.next() - minStdMin
		if r < past {
			return int(r / scaling)
		}
	}
}

// Percent returns a uniform integer in [0, 100).
func (s *MinStdSource) Percent() int {
	return s.Intn(100)
}
