package assessment

import "testing"

func TestValidateValue_Scale(t *testing.T) {
	s, err := ByType(TypeLearningStyle)
	if err != nil {
		t.Fatalf("ByType: %v", err)
	}

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"1", false},
		{"3", false},
		{"5", false},
		{" 4 ", false},
		{"0", true},
		{"6", true},
		{"-1", true},
		{"abc", true},
		{"", true},
	}

	for _, tt := range tests {
		err := s.ValidateValue(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateValue(%q) err = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidateValue_Choice(t *testing.T) {
	s, err := ByType(TypeBehavioral)
	if err != nil {
		t.Fatalf("ByType: %v", err)
	}

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"A", false},
		{"E", false},
		{"c", false},
		{" b ", false},
		{"F", true},
		{"AB", true},
		{"3", true},
		{"", true},
	}

	for _, tt := range tests {
		err := s.ValidateValue(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateValue(%q) err = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestNormalizeValue(t *testing.T) {
	choice, _ := ByType(TypeAptitude)
	if got := choice.NormalizeValue(" c "); got != "C" {
		t.Errorf("NormalizeValue(choice) = %q, want %q", got, "C")
	}

	scale, _ := ByType(TypeAIAttitude)
	if got := scale.NormalizeValue(" 4 "); got != "4" {
		t.Errorf("NormalizeValue(scale) = %q, want %q", got, "4")
	}
}

func TestRegistry(t *testing.T) {
	all := All()
	if len(all) != 5 {
		t.Fatalf("len(All()) = %d, want 5", len(all))
	}

	seen := map[string]bool{}
	for _, s := range all {
		if s.SlotKey == "" || s.ProviderSlug == "" {
			t.Errorf("schema %s missing slot key or slug", s.Type)
		}
		if seen[s.SlotKey] {
			t.Errorf("duplicate slot key %q", s.SlotKey)
		}
		seen[s.SlotKey] = true
		if s.FallbackTimeLimit <= 0 {
			t.Errorf("schema %s has no fallback time limit", s.Type)
		}
	}

	if _, err := ByType("nope"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestCombinedHasLargerFallback(t *testing.T) {
	combined, _ := ByType(TypeCombined)
	single, _ := ByType(TypeLearningStyle)
	if combined.FallbackTimeLimit <= single.FallbackTimeLimit {
		t.Errorf("combined fallback %s should exceed single %s",
			combined.FallbackTimeLimit, single.FallbackTimeLimit)
	}
}
