package types

import (
	"fmt"
	"math"
	"time"
)

const (
	kb uint64 = 1024
	mb        = kb * 1024
	gb        = mb * 1024
)

// MemorySize is an unsigned byte count with saturating arithmetic and a
// human-readable base-1024 display form.
type MemorySize uint64

// MemorySizeFromBytes wraps a byte count directly.
func MemorySizeFromBytes(n uint64) MemorySize { return MemorySize(n) }

// MemorySizeFromKB constructs a MemorySize from kilobytes, saturating on
// overflow.
func MemorySizeFromKB(n uint64) MemorySize { return MemorySize(saturatingMul(n, kb)) }

// MemorySizeFromMB constructs a MemorySize from megabytes, saturating on
// overflow.
func MemorySizeFromMB(n uint64) MemorySize { return MemorySize(saturatingMul(n, mb)) }

// MemorySizeFromGB constructs a MemorySize from gigabytes, saturating on
// overflow.
func MemorySizeFromGB(n uint64) MemorySize { return MemorySize(saturatingMul(n, gb)) }

func saturatingMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	result := a * b
	if result/b != a {
		return math.MaxUint64
	}
	return result
}

// Bytes returns the size in bytes.
func (m MemorySize) Bytes() uint64 { return uint64(m) }

// KB returns the size in kilobytes.
func (m MemorySize) KB() float64 { return float64(m) / float64(kb) }

// MB returns the size in megabytes.
func (m MemorySize) MB() float64 { return float64(m) / float64(mb) }

// GB returns the size in gigabytes.
func (m MemorySize) GB() float64 { return float64(m) / float64(gb) }

// Add returns m+other, saturating at the maximum uint64 value.
func (m MemorySize) Add(other MemorySize) MemorySize {
	sum := uint64(m) + uint64(other)
	if sum < uint64(m) {
		return MemorySize(math.MaxUint64)
	}
	return MemorySize(sum)
}

// Sub returns m-other, saturating at zero.
func (m MemorySize) Sub(other MemorySize) MemorySize {
	if other > m {
		return 0
	}
	return m - other
}

// String renders the size using the largest whole unit that keeps the
// value >= 1, matching vortex's original GB/MB/KB/bytes thresholds.
func (m MemorySize) String() string {
	switch {
	case uint64(m) >= gb:
		return fmt.Sprintf("%.2f GB", m.GB())
	case uint64(m) >= mb:
		return fmt.Sprintf("%.2f MB", m.MB())
	case uint64(m) >= kb:
		return fmt.Sprintf("%.2f KB", m.KB())
	default:
		return fmt.Sprintf("%d bytes", uint64(m))
	}
}

// CpuCores is a non-negative floating point core count.
type CpuCores float64

const cfsPeriodUsec int64 = 100_000

// ToQuota converts cores into the CGroup v2 cpu.max (quota_us, period_us)
// pair: quota_us = round(cores * 100_000), period_us = 100_000.
func (c CpuCores) ToQuota() (quotaUsec, periodUsec int64) {
	return int64(math.Round(float64(c) * float64(cfsPeriodUsec))), cfsPeriodUsec
}

// CpuLimit describes a CPU share in cores.
type CpuLimit struct {
	Cores CpuCores
}

// MemoryLimit describes a memory ceiling with an optional swap ceiling.
type MemoryLimit struct {
	Limit MemorySize
	Swap  *MemorySize
}

// ResourceStats is a point-in-time snapshot of a cgroup's resource usage.
// CPU counters and peak fields are monotonically non-decreasing across
// successive reads of the same container.
type ResourceStats struct {
	CPUUsage     time.Duration
	CPUThrottled time.Duration
	MemoryCurrent MemorySize
	MemoryPeak    MemorySize
	SwapCurrent   MemorySize
	SwapPeak      MemorySize
	IOReadBytes   uint64
	IOWriteBytes  uint64
}
