package instance

import "testing"

func TestGetIDPrecedence(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("INSTANCE_ID", "")
	if got := GetID(); got != "local" {
		t.Fatalf("expected local got %s", got)
	}

	t.Setenv("INSTANCE_ID", "api-2")
	if got := GetID(); got != "api-2" {
		t.Fatalf("expected api-2 got %s", got)
	}

	t.Setenv("DYNO", "web.1")
	if got := GetID(); got != "web.1" {
		t.Fatalf("expected web.1 got %s", got)
	}
}
