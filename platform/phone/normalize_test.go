package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	if got := NormalizeE164(" (514) 872-0134 "); got != "+15148720134" {
		t.Fatalf("expected +15148720134, got %q", got)
	}
	if got := NormalizeE164("not a number"); got != "not a number" {
		t.Fatalf("expected input passthrough, got %q", got)
	}
}

func TestIsPlausible(t *testing.T) {
	if !IsPlausible("450-555-1234") {
		t.Fatal("expected local number to be plausible")
	}
	if IsPlausible("12") {
		t.Fatal("expected short input to be rejected")
	}
}
