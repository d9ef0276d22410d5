package loader

import (
	"testing"
)

func TestEnvLoader_Load(t *testing.T) {
	l := NewEnvLoaderFrom("BLURRER_", []string{
		"BLURRER_EDITOR_TAB_WIDTH=8",
		"BLURRER_BLUR_ENABLED=off",
		"BLURRER_LOG_FILE=/tmp/blurrer.log",
		"BLURRER_NOSECTION=1",
		"HOME=/root",
	})

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		section, key string
		want         any
	}{
		{"editor", "tab_width", int64(8)},
		{"blur", "enabled", false},
		{"log", "file", "/tmp/blurrer.log"},
	}

	for _, tt := range tests {
		section, ok := config[tt.section].(map[string]any)
		if !ok {
			t.Errorf("section %q missing", tt.section)
			continue
		}
		if got := section[tt.key]; got != tt.want {
			t.Errorf("%s.%s = %v (%T), want %v", tt.section, tt.key, got, got, tt.want)
		}
	}

	if len(config) != 3 {
		t.Errorf("len(config) = %d, want 3", len(config))
	}
}

func TestEnvLoader_LoadEmpty(t *testing.T) {
	config, err := NewEnvLoaderFrom("BLURRER_", []string{"PATH=/bin"}).Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", config, err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"true", true},
		{"Yes", true},
		{"off", false},
		{"42", int64(42)},
		{"#1e1e2e", "#1e1e2e"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseValue(tt.input); got != tt.want {
				t.Errorf("parseValue(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
