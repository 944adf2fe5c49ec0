package runner

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateCPULimit(t *testing.T) {
	cases := []struct {
		cores   float64
		wantErr bool
	}{
		{0, true},
		{-1, true},
		{0.5, false},
		{128, false},
		{128.1, true},
	}

	for _, tc := range cases {
		err := validateCPULimit(tc.cores)
		if tc.wantErr {
			require.Error(t, err)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestValidateMemoryLimit(t *testing.T) {
	cases := []struct {
		mb      uint64
		wantErr bool
	}{
		{0, true},
		{1, false},
		{1_048_576, false},
		{1_048_577, true},
	}

	for _, tc := range cases {
		err := validateMemoryLimit(tc.mb)
		if tc.wantErr {
			require.Error(t, err)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestPreflightRequiresRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, preflight may succeed or fail on cgroup v2 presence instead")
	}
	require.Error(t, preflight(), "expected preflight to fail for non-root")
}
