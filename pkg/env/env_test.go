package env

import "testing"

func TestGetFallsBackWhenBlank(t *testing.T) {
	t.Setenv("INVENTORY_TEST_VALUE", "   ")
	if got := Get("INVENTORY_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("INVENTORY_TEST_VALUE", " console ")
	if got := Get("INVENTORY_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("INVENTORY_TEST_FLAG", "true")
	if !GetBool("INVENTORY_TEST_FLAG", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("INVENTORY_TEST_FLAG", "nope")
	if GetBool("INVENTORY_TEST_FLAG", false) {
		t.Fatalf("malformed value should use fallback")
	}
}
