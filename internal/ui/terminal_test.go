package ui

import (
	"os"
	"testing"
)

func TestIsTerminal(t *testing.T) {
	// This test verifies the function doesn't panic
	// The actual result depends on the test environment
	result := IsTerminal()
	// In test environment, this is usually false
	// The important thing is it doesn't crash and returns a bool
	var _ bool = result
}

func TestWidth(t *testing.T) {
	// In a non-TTY test environment this falls back to 80; under a
	// real terminal it reports the actual size. Either way it must
	// be a usable positive width.
	if w := Width(); w <= 0 {
		t.Errorf("Width() = %d, want positive", w)
	}
}

func TestShouldUseColor_Default(t *testing.T) {
	// Clean environment for this test
	oldNoColor := os.Getenv("NO_COLOR")
	oldClicolor := os.Getenv("CLICOLOR")
	oldClicolorForce := os.Getenv("CLICOLOR_FORCE")
	defer func() {
		if oldNoColor != "" {
			os.Setenv("NO_COLOR", oldNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
		if oldClicolor != "" {
			os.Setenv("CLICOLOR", oldClicolor)
		} else {
			os.Unsetenv("CLICOLOR")
		}
		if oldClicolorForce != "" {
			os.Setenv("CLICOLOR_FORCE", oldClicolorForce)
		} else {
			os.Unsetenv("CLICOLOR_FORCE")
		}
	}()

	os.Unsetenv("NO_COLOR")
	os.Unsetenv("CLICOLOR")
	os.Unsetenv("CLICOLOR_FORCE")

	result := ShouldUseColor()
	// In non-TTY test environment, should be false
	_ = result
}

func TestShouldUseColor_NO_COLOR(t *testing.T) {
	oldNoColor := os.Getenv("NO_COLOR")
	defer func() {
		if oldNoColor != "" {
			os.Setenv("NO_COLOR", oldNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()

	os.Setenv("NO_COLOR", "1")
	if ShouldUseColor() {
		t.Error("ShouldUseColor() should return false when NO_COLOR is set")
	}
}

func TestShouldUseColor_NO_COLOR_AnyValue(t *testing.T) {
	oldNoColor := os.Getenv("NO_COLOR")
	defer func() {
		if oldNoColor != "" {
			os.Setenv("NO_COLOR", oldNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()

	// NO_COLOR with any value (even "0") should disable color
	os.Setenv("NO_COLOR", "0")
	if ShouldUseColor() {
		t.Error("ShouldUseColor() should return false when NO_COLOR is set to any value")
	}
}

func TestShouldUseColor_CLICOLOR_0(t *testing.T) {
	oldNoColor := os.Getenv("NO_COLOR")
	oldClicolor := os.Getenv("CLICOLOR")
	defer func() {
		if oldNoColor != "" {
			os.Setenv("NO_COLOR", oldNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
		if oldClicolor != "" {
			os.Setenv("CLICOLOR", oldClicolor)
		} else {
			os.Unsetenv("CLICOLOR")
		}
	}()

	os.Unsetenv("NO_COLOR")
	os.Setenv("CLICOLOR", "0")
	if ShouldUseColor() {
		t.Error("ShouldUseColor() should return false when CLICOLOR=0")
	}
}

func TestShouldUseColor_CLICOLOR_FORCE(t *testing.T) {
	oldNoColor := os.Getenv("NO_COLOR")
	oldClicolorForce := os.Getenv("CLICOLOR_FORCE")
	defer func() {
		if oldNoColor != "" {
			os.Setenv("NO_COLOR", oldNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
		if oldClicolorForce != "" {
			os.Setenv("CLICOLOR_FORCE", oldClicolorForce)
		} else {
			os.Unsetenv("CLICOLOR_FORCE")
		}
	}()

	os.Unsetenv("NO_COLOR")
	os.Setenv("CLICOLOR_FORCE", "1")
	if !ShouldUseColor() {
		t.Error("ShouldUseColor() should return true when CLICOLOR_FORCE is set")
	}
}

func TestParseThemeMode(t *testing.T) {
	tests := []struct {
		name string
		want ThemeMode
		ok   bool
	}{
		{"dark", ThemeModeDark, true},
		{"light", ThemeModeLight, true},
		{"auto", ThemeModeAuto, true},
		{"DARK", ThemeModeDark, true},
		{"Light", ThemeModeLight, true},
		{"", ThemeModeAuto, false},
		{"solarized", ThemeModeAuto, false},
	}
	for _, tt := range tests {
		got, ok := parseThemeMode(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseThemeMode(%q) = (%s, %v), want (%s, %v)",
				tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInitTheme_EnvOverridesConfig(t *testing.T) {
	oldTheme := os.Getenv("SSS_THEME")
	defer func() {
		if oldTheme != "" {
			os.Setenv("SSS_THEME", oldTheme)
		} else {
			os.Unsetenv("SSS_THEME")
		}
	}()

	// Test: env var overrides config
	os.Setenv("SSS_THEME", "dark")
	InitTheme("light") // config says light
	if GetThemeMode() != ThemeModeDark {
		t.Errorf("Expected dark mode from env var, got %s", GetThemeMode())
	}

	os.Setenv("SSS_THEME", "light")
	InitTheme("dark") // config says dark
	if GetThemeMode() != ThemeModeLight {
		t.Errorf("Expected light mode from env var, got %s", GetThemeMode())
	}
}

func TestInitTheme_ConfigUsedWhenNoEnv(t *testing.T) {
	oldTheme := os.Getenv("SSS_THEME")
	defer func() {
		if oldTheme != "" {
			os.Setenv("SSS_THEME", oldTheme)
		} else {
			os.Unsetenv("SSS_THEME")
		}
	}()

	os.Unsetenv("SSS_THEME")

	InitTheme("dark")
	if GetThemeMode() != ThemeModeDark {
		t.Errorf("Expected dark mode from config, got %s", GetThemeMode())
	}

	InitTheme("light")
	if GetThemeMode() != ThemeModeLight {
		t.Errorf("Expected light mode from config, got %s", GetThemeMode())
	}
}

func TestInitTheme_DefaultsToAuto(t *testing.T) {
	oldTheme := os.Getenv("SSS_THEME")
	defer func() {
		if oldTheme != "" {
			os.Setenv("SSS_THEME", oldTheme)
		} else {
			os.Unsetenv("SSS_THEME")
		}
	}()

	os.Unsetenv("SSS_THEME")
	InitTheme("") // no config
	if GetThemeMode() != ThemeModeAuto {
		t.Errorf("Expected auto mode as default, got %s", GetThemeMode())
	}
}

func TestHasDarkBackground_ForcedModes(t *testing.T) {
	oldTheme := os.Getenv("SSS_THEME")
	defer func() {
		if oldTheme != "" {
			os.Setenv("SSS_THEME", oldTheme)
		} else {
			os.Unsetenv("SSS_THEME")
		}
	}()

	os.Setenv("SSS_THEME", "dark")
	InitTheme("")
	if !HasDarkBackground() {
		t.Error("Expected HasDarkBackground() to return true when mode is dark")
	}

	os.Setenv("SSS_THEME", "light")
	InitTheme("")
	if HasDarkBackground() {
		t.Error("Expected HasDarkBackground() to return false when mode is light")
	}
}
