package registry

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	cases := map[string]string{
		"Jiří":      "Jiri",
		"Jan Novák": "Jan Novak",
		"plain":     "plain",
	}
	for input, expected := range cases {
		if got := RemoveDiacritics(input); got != expected {
			t.Errorf("RemoveDiacritics(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Jan Novák": "jan novak",
		"jan-novak": "jan novak",
		"  Ada  ":   "ada",
	}
	for input, expected := range cases {
		if got := NormalizeName(input); got != expected {
			t.Errorf("NormalizeName(%q) = %q, expected %q", input, got, expected)
		}
	}
}
