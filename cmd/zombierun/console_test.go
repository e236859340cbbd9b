package main

import (
	"testing"

	"github.com/zombierun/sim/internal/game"
)

func TestNewPrinterLocales(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en", "Round 2"},
		{"", "Round 2"},
		{"not a locale!", "Round 2"},
		{"zh-TW", "第 2 回合"},
		{"zh-Hant", "第 2 回合"},
		{"de-AT", "Runde 2"},
		{"fr", "Round 2"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			if got := newPrinter(tt.locale).Sprintf("Round %d", 2); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutcomeNamesAreTranslated(t *testing.T) {
	p := newPrinter("zh-TW")
	for _, o := range []game.Outcome{game.OutcomeVictory, game.OutcomeDefeat, game.OutcomeTimeout, game.OutcomeAborted} {
		if got := p.Sprintf(o.String()); got == o.String() {
			t.Errorf("%s has no zh-TW translation", o)
		}
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Kills", 5},
		{"擊殺", 4},
		{"第 1 回合", 9},
		{"", 0},
	}
	for _, tt := range tests {
		if got := displayWidth(tt.in); got != tt.want {
			t.Errorf("displayWidth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAccuracy(t *testing.T) {
	p := newPrinter("en")
	if got := accuracy(p, 0, 0); got != "-" {
		t.Errorf("no shots = %q", got)
	}
	if got := accuracy(p, 3, 4); got != "75%" {
		t.Errorf("3/4 = %q", got)
	}
}
