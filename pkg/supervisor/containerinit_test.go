package supervisor

import (
	"reflect"
	"testing"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		command  []string
		wantProg string
		wantArgs []string
	}{
		{"empty defaults to interactive shell", nil, "/bin/sh", []string{"-i"}},
		{"bare bash becomes interactive", []string{"/bin/bash"}, "/bin/bash", []string{"-i"}},
		{"bash with args is untouched", []string{"/bin/bash", "-c", "echo hi"}, "/bin/bash", []string{"-c", "echo hi"}},
		{"non-shell program is untouched", []string{"echo", "hello"}, "echo", []string{"hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, args := buildCommand(tt.command)
			if prog != tt.wantProg {
				t.Errorf("program = %q, want %q", prog, tt.wantProg)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}
