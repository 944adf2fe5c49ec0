package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemorySizeConversions(t *testing.T) {
	size := MemorySizeFromMB(512)
	assert.Equal(t, uint64(536_870_912), size.Bytes())
	assert.Equal(t, 512.0, size.MB())
}

func TestMemorySizeArithmetic(t *testing.T) {
	a := MemorySizeFromMB(256)
	b := MemorySizeFromMB(256)
	sum := a.Add(b)
	assert.Equal(t, 512.0, sum.MB())
}

func TestMemorySizeSaturatingAdd(t *testing.T) {
	max := MemorySize(^uint64(0))
	sum := max.Add(MemorySizeFromBytes(1))
	assert.Equal(t, max.Bytes(), sum.Bytes(), "Add() should saturate instead of overflowing")
}

func TestMemorySizeSaturatingSub(t *testing.T) {
	small := MemorySizeFromBytes(10)
	large := MemorySizeFromBytes(20)
	diff := small.Sub(large)
	assert.Equal(t, uint64(0), diff.Bytes())
}

func TestMemorySizeDisplay(t *testing.T) {
	tests := []struct {
		size MemorySize
		want string
	}{
		{MemorySizeFromGB(2), "2.00 GB"},
		{MemorySizeFromMB(512), "512.00 MB"},
		{MemorySizeFromBytes(1024), "1.00 KB"},
		{MemorySizeFromBytes(100), "100 bytes"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.size.String())
	}
}

func TestCpuQuotaConversion(t *testing.T) {
	tests := []struct {
		cores          CpuCores
		wantQuota      int64
		wantPeriodUsec int64
	}{
		{1.0, 100_000, 100_000},
		{0.5, 50_000, 100_000},
		{2.0, 200_000, 100_000},
	}

	for _, tt := range tests {
		quota, period := tt.cores.ToQuota()
		assert.Equal(t, tt.wantQuota, quota)
		assert.Equal(t, tt.wantPeriodUsec, period)
	}
}
