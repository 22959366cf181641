package settings

import "testing"

func TestValidators(t *testing.T) {
	for _, s := range []string{"1s", " 250ms ", "2m"} {
		if err := validateDuration(s); err != nil {
			t.Fatalf("validateDuration(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "soon", "10ms", "-1s"} {
		if validateDuration(s) == nil {
			t.Fatalf("validateDuration(%q) should fail", s)
		}
	}
	if validatePositive("500") != nil || validatePositive("0") == nil || validatePositive("x") == nil {
		t.Fatalf("validatePositive misbehaves")
	}
	if nonEmpty("editor")("  ") == nil || nonEmpty("editor")("vim") != nil {
		t.Fatalf("nonEmpty misbehaves")
	}
}
