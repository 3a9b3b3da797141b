package daemon

import "testing"

func TestParseResizePayload(t *testing.T) {
	rows, cols, ok := parseResizePayload([]byte("24;80"))
	if !ok || rows != 24 || cols != 80 {
		t.Errorf("got (%d, %d, %v), want (24, 80, true)", rows, cols, ok)
	}
}

func TestParseResizePayloadRejectsMalformed(t *testing.T) {
	for _, c := range []string{"", "24", "x;80", "24;y"} {
		if _, _, ok := parseResizePayload([]byte(c)); ok {
			t.Errorf("expected %q to fail to parse", c)
		}
	}
}
