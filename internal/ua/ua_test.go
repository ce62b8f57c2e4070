package ua

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		name, raw    string
		browser, dev string
		bot          bool
	}{
		{
			name:    "chrome desktop",
			raw:     "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.6422.60 Safari/537.36",
			browser: "Chrome",
			dev:     "Desktop",
		},
		{
			name:    "iphone safari",
			raw:     "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
			browser: "Safari",
			dev:     "Mobile",
		},
		{
			name:    "googlebot",
			raw:     "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			dev:     "Bot",
			bot:     true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.raw)
			if (tc.browser != "" && got.Browser != tc.browser) || got.Device != tc.dev || got.IsBot != tc.bot {
				t.Fatalf("got %+v", got)
			}
			if got.Raw != tc.raw {
				t.Errorf("raw not kept")
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	got := Parse("")
	if got.Browser != "Unknown" || got.OS != "Unknown" {
		t.Fatalf("got %+v", got)
	}
}

func TestLabel(t *testing.T) {
	i := Info{Browser: "Chrome", Version: "125.0.6422", OS: "MacOSX", Device: "Desktop"}
	if got := i.Label(); got != "Chrome 125 on MacOSX (Desktop)" {
		t.Fatalf("Label = %q", got)
	}
	i.Version = ""
	if got := i.Label(); got != "Chrome on MacOSX (Desktop)" {
		t.Fatalf("Label = %q", got)
	}
}
