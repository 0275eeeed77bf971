package chefbot

import "testing"

func TestRoleConstants(t *testing.T) {
	t.Run("role_user", func(t *testing.T) {
		if RoleUser != "user" {
			t.Errorf("expected RoleUser='user', got '%s'", RoleUser)
		}
	})

	t.Run("role_assistant", func(t *testing.T) {
		if RoleAssistant != "assistant" {
			t.Errorf("expected RoleAssistant='assistant', got '%s'", RoleAssistant)
		}
	})

	t.Run("role_system", func(t *testing.T) {
		if RoleSystem != "system" {
			t.Errorf("expected RoleSystem='system', got '%s'", RoleSystem)
		}
	})
}

func TestTemperatureConstants(t *testing.T) {
	t.Run("temperature_unset", func(t *testing.T) {
		if TemperatureUnset >= 0 {
			t.Error("TemperatureUnset should be negative to distinguish from valid temperatures")
		}
	})

	t.Run("temperature_zero", func(t *testing.T) {
		if TemperatureZero <= 0 {
			t.Error("TemperatureZero should be positive (near-zero)")
		}
		if TemperatureZero >= 0.01 {
			t.Error("TemperatureZero should be very small")
		}
	})
}

func TestResolveTemperature(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"zero_value", 0, TemperatureUnset},
		{"negative", -0.5, TemperatureUnset},
		{"unset", TemperatureUnset, TemperatureUnset},
		{"explicit_zero", TemperatureZero, TemperatureZero},
		{"positive", 0.7, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTemperature(tt.in); got != tt.want {
				t.Errorf("ResolveTemperature(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenUsage_Add(t *testing.T) {
	a := TokenUsage{Prompt: 10, Completion: 5, Total: 15}
	b := TokenUsage{Prompt: 1, Completion: 2, Total: 3}

	got := a.Add(b)
	want := TokenUsage{Prompt: 11, Completion: 7, Total: 18}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if a.Total != 15 {
		t.Error("Add must not modify the receiver")
	}
}
