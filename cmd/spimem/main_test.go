package main

import (
	"errors"
	"io"
	"syscall"
	"testing"

	"github.com/gentam/spimem"
)

func TestUsageErrors(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	defer rootCmd.SetArgs(nil)

	for _, args := range [][]string{
		{"bogus"},
		{"boards", "extra"},
		{"run", "--no-such-flag"},
	} {
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		if err == nil {
			t.Errorf("%q: Execute succeeded", args)
			continue
		}
		if c := exitStatus(err); c != 2 {
			t.Errorf("%q: exit status %d, expected 2 (%v)", args, c, err)
		}
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{usageError{errors.New("x")}, 2},
		{&spimem.ABIMismatchError{Want: 9, Got: 8}, 1},
		{spimem.ErrNoDevice, -int(syscall.ENODEV)},
	}
	for _, tt := range tests {
		if c := exitStatus(tt.err); c != tt.want {
			t.Errorf("exitStatus(%v) = %d, expected %d", tt.err, c, tt.want)
		}
	}
}
