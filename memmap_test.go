package spimem

import (
	"errors"
	"testing"
)

func TestEnableQuadMemoryMap(t *testing.T) {
	w := &MemWindow{}
	ctl := NewController(0x31030000, w, nil)
	ctl.EnableQuadMemoryMap(QuadMemoryMapProgram)

	if len(w.Log) != len(QuadMemoryMapProgram) {
		t.Fatalf("%d accesses, expected %d writes", len(w.Log), len(QuadMemoryMapProgram))
	}
	for i, step := range QuadMemoryMapProgram {
		a := w.Log[i]
		if !a.Write || a.Off != step.Reg.Offset() || a.Value != step.Value {
			t.Errorf("step %d: %+v, expected write %s=%#x", i, a, step.Reg, step.Value)
		}
	}
	if w.Words[RegControl] != 0x80240073 {
		t.Errorf("control left at %#x", w.Words[RegControl])
	}
}

func TestProgramValidate(t *testing.T) {
	if err := QuadMemoryMapProgram.Validate(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		p    Program
	}{
		{"empty", nil},
		{"single", Program{{RegControl, 0}}},
		{"no clear", Program{{RegClock, 6}, {RegControl, 0x80240073}}},
		{"clear with value", Program{{RegControl, 1}, {RegControl, 0x80240073}}},
		{"no re-arm", Program{{RegControl, 0}, {RegMMTOP, 0x7FFFFFFF}}},
		{"reserved", Program{{RegControl, 0}, {regReserved0, 1}, {RegControl, 1}}},
		{"invalid", Program{{RegControl, 0}, {Reg(99), 1}, {RegControl, 1}}},
	}
	for _, tt := range tests {
		if err := tt.p.Validate(); err == nil {
			t.Errorf("%s: Validate succeeded", tt.name)
		}
	}
}

func TestVerifyProgram(t *testing.T) {
	w := &MemWindow{}
	ctl := NewController(0x31030000, w, nil)
	ctl.EnableQuadMemoryMap(QuadMemoryMapProgram)

	// Control reads back hardware state, not the written value.
	w.Words[RegControl] = 0x12345678
	if err := ctl.VerifyProgram(QuadMemoryMapProgram); err != nil {
		t.Fatal(err)
	}

	w.Words[RegClock] = 7
	w.Words[RegMMTOP] = 0
	err := ctl.VerifyProgram(QuadMemoryMapProgram)
	var rb *ReadbackError
	if !errors.As(err, &rb) {
		t.Fatalf("expected ReadbackError, got %v", err)
	}
	want := []Mismatch{
		{Reg: RegClock, Want: 6, Got: 7},
		{Reg: RegMMTOP, Want: 0x7FFFFFFF, Got: 0},
	}
	if len(rb.Mismatches) != len(want) {
		t.Fatalf("mismatches %+v, expected %+v", rb.Mismatches, want)
	}
	for i := range want {
		if rb.Mismatches[i] != want[i] {
			t.Errorf("mismatch %d: %+v, expected %+v", i, rb.Mismatches[i], want[i])
		}
	}
	if rb.Error() == "" {
		t.Error("empty error message")
	}
}

func TestChipSelectEnable(t *testing.T) {
	const bits = 1<<1 | 1<<9 // enable and value for line 1
	for _, initial := range []uint32{0, 0x0000FE02, 0x0000FE00, 0x00000200, 0xFFFFFFFF, 0x12345678} {
		w := &MemWindow{}
		w.Words[RegSSEL] = initial
		ctl := NewController(0x31030000, w, nil)

		got := ctl.ChipSelectEnable(1)
		if want := initial | bits; got != want || w.Words[RegSSEL] != want {
			t.Errorf("initial %#08x: got %#08x (register %#08x), expected %#08x", initial, got, w.Words[RegSSEL], want)
		}
		if again := ctl.ChipSelectEnable(1); again != got {
			t.Errorf("initial %#08x: second application gave %#08x, expected %#08x", initial, again, got)
		}
	}
}
