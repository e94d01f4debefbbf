package taxonomy

import "testing"

func intp(v int) *int { return &v }

func TestClassifyEventCodePrefixes(t *testing.T) {
	cases := []struct {
		code string
		want Category
	}{
		{"180", ArmedConflict},
		{"190", ArmedConflict},
		{"195", ArmedConflict},
		{"200", ArmedConflict},
		{"192", InfrastructureEnergy},
		{"193", InfrastructureEnergy},
		{"140", CivilUnrest},
		{"145", CivilUnrest},
		{"071", DiplomacySanctions},
		{"085", DiplomacySanctions},
		{"090", DiplomacySanctions},
		{"100", EconomicDisruption},
		{"112", EconomicDisruption},
		{"170", CrimeTerror},
	}
	for _, tc := range cases {
		if got := Classify(tc.code, nil); got != tc.want {
			t.Errorf("Classify(%q): expected %q, got %q", tc.code, tc.want, got)
		}
	}
}

func TestClassifyQuadClassFallback(t *testing.T) {
	if got := Classify("", intp(3)); got != CrimeTerror {
		t.Errorf("quad 3: expected %q, got %q", CrimeTerror, got)
	}
	if got := Classify("", intp(4)); got != CrimeTerror {
		t.Errorf("quad 4: expected %q, got %q", CrimeTerror, got)
	}
	if got := Classify("", intp(1)); got != DiplomacySanctions {
		t.Errorf("quad 1: expected %q, got %q", DiplomacySanctions, got)
	}
	if got := Classify("", intp(2)); got != DiplomacySanctions {
		t.Errorf("quad 2: expected %q, got %q", DiplomacySanctions, got)
	}
}

func TestClassifyEventCodeWinsOverQuad(t *testing.T) {
	if got := Classify("140", intp(4)); got != CivilUnrest {
		t.Errorf("expected event code to take precedence, got %q", got)
	}
}

func TestClassifyDefault(t *testing.T) {
	if got := Classify("", nil); got != CivilUnrest {
		t.Errorf("expected default %q, got %q", CivilUnrest, got)
	}
	if got := Classify("03", nil); got != CivilUnrest {
		t.Errorf("unmapped prefix: expected %q, got %q", CivilUnrest, got)
	}
	if got := Classify("1", nil); got != CivilUnrest {
		t.Errorf("short code: expected %q, got %q", CivilUnrest, got)
	}
}

func TestBaseWeights(t *testing.T) {
	cases := []struct {
		category Category
		want     float64
	}{
		{ArmedConflict, 25},
		{CivilUnrest, 15},
		{CrimeTerror, 20},
		{DiplomacySanctions, 8},
		{EconomicDisruption, 12},
		{InfrastructureEnergy, 15},
		{Category("Weather"), 10},
	}
	for _, tc := range cases {
		if got := BaseWeight(tc.category); got != tc.want {
			t.Errorf("BaseWeight(%q): expected %v, got %v", tc.category, tc.want, got)
		}
	}
}

func TestAllCategoriesWeighted(t *testing.T) {
	for _, c := range All {
		if BaseWeight(c) == defaultWeight {
			t.Errorf("category %q falls through to the default weight", c)
		}
	}
}
