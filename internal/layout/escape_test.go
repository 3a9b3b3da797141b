package layout

import "testing"

func TestIsEscSequenceComplete(t *testing.T) {
	cases := []struct {
		seq  []byte
		want bool
	}{
		{[]byte{0x1b}, false},
		{[]byte{0x1b, '['}, false},
		{[]byte{0x1b, '[', 'A'}, true},
		{[]byte{0x1b, '[', '1', ';', '5'}, false},
		{[]byte{0x1b, '[', '1', ';', '5', 'u'}, true},
		{[]byte{0x1b, 'O', 'P'}, true},
	}
	for _, c := range cases {
		if got := IsEscSequenceComplete(c.seq); got != c.want {
			t.Errorf("IsEscSequenceComplete(%q) = %v, want %v", c.seq, got, c.want)
		}
	}
}

func TestIsCtrlEnterSequence(t *testing.T) {
	if !IsCtrlEnterSequence([]byte("\x1b[13;5u")) {
		t.Error("kitty ctrl+enter not detected")
	}
	if !IsCtrlEnterSequence([]byte("\x1b[27;5;13~")) {
		t.Error("xterm ctrl+enter not detected")
	}
	if IsCtrlEnterSequence([]byte("\x1b[13;2u")) {
		t.Error("shift+enter falsely matched ctrl+enter")
	}
}

func TestIsShiftEnterSequence(t *testing.T) {
	if !IsShiftEnterSequence([]byte("\x1b[13;2u")) {
		t.Error("kitty shift+enter not detected")
	}
	if !IsShiftEnterSequence([]byte("\x1b[27;2;13~")) {
		t.Error("xterm shift+enter not detected")
	}
}

func TestStripANSI(t *testing.T) {
	in := []byte("\x1b[1mThis command requires approval\x1b[0m\n1. Yes\n")
	got := string(StripANSI(in))
	want := "This command requires approval\n1. Yes\n"
	if got != want {
		t.Errorf("StripANSI = %q, want %q", got, want)
	}
}

func TestStripANSIOSC(t *testing.T) {
	in := []byte("\x1b]0;title\x07plain")
	got := string(StripANSI(in))
	if got != "plain" {
		t.Errorf("StripANSI OSC = %q, want %q", got, "plain")
	}
}

func TestIsTruthyEnv(t *testing.T) {
	t.Setenv("VT_TEST_FLAG", "  YES ")
	if !IsTruthyEnv("VT_TEST_FLAG") {
		t.Error("expected truthy")
	}
	t.Setenv("VT_TEST_FLAG", "nope")
	if IsTruthyEnv("VT_TEST_FLAG") {
		t.Error("expected falsy")
	}
}
