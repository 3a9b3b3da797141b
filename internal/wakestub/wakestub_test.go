package wakestub

import "testing"

func TestEventsChannelNeverFires(t *testing.T) {
	r := New()
	select {
	case ev := <-r.Events():
		t.Fatalf("expected no event, got %+v", ev)
	default:
	}
}
