package utils

import "testing"

func TestDetermineLocale(t *testing.T) {
	supported := []string{"pt", "en"}
	cases := []struct {
		name   string
		query  string
		accept string
		want   string
	}{
		{"query wins", "en", "pt-BR,pt;q=0.9", "en"},
		{"query base language", "en-US", "", "en"},
		{"accept language q order", "", "en;q=0.7,pt;q=0.9", "pt"},
		{"accept regional variant", "", "pt-BR", "pt"},
		{"unsupported falls back to default", "fr", "de,es;q=0.8", "pt"},
		{"empty falls back to default", "", "", "pt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetermineLocale(tc.query, tc.accept, supported, "pt"); got != tc.want {
				t.Fatalf("DetermineLocale = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetermineLocaleDefaultNotSupported(t *testing.T) {
	if got := DetermineLocale("", "", []string{"en"}, "fr"); got != "en" {
		t.Fatalf("DetermineLocale = %q, want en", got)
	}
}
