package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zombierun/sim/internal/config"
	"github.com/zombierun/sim/internal/game"
	"github.com/zombierun/sim/internal/progress"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/width"
)

var supportedLocales = []language.Tag{
	language.English,
	language.TraditionalChinese,
	language.German,
}

var localeMatcher = language.NewMatcher(supportedLocales)

func init() {
	for _, s := range []struct{ key, zh, de string }{
		{"Zombie Invasion", "殭屍入侵", "Zombie-Invasion"},
		{"Data", "資料", "Daten"},
		{"Storage", "儲存", "Speicher"},
		{"Results", "結果", "Ergebnisse"},
		{"Career", "生涯", "Karriere"},
		{"Settings loaded", "設定已載入", "Einstellungen geladen"},
		{"Combat scripts loaded", "戰鬥腳本已載入", "Kampfskripte geladen"},
		{"Run history ready", "戰績紀錄就緒", "Spielverlauf bereit"},
		{"Progress loaded", "進度已載入", "Fortschritt geladen"},
		{"Round %d", "第 %d 回合", "Runde %d"},
		{"Distance", "距離", "Strecke"},
		{"Kills", "擊殺", "Abschüsse"},
		{"Accuracy", "命中率", "Trefferquote"},
		{"Damage taken", "承受傷害", "Erlittener Schaden"},
		{"Runs played", "遊玩次數", "Gespielte Runden"},
		{"Victories", "勝利", "Siege"},
		{"Defeats", "敗北", "Niederlagen"},
		{"Best distance", "最遠距離", "Beste Strecke"},
		{"victory", "勝利", "Sieg"},
		{"defeat", "敗北", "Niederlage"},
		{"timeout", "逾時", "Zeitüberschreitung"},
		{"aborted", "中斷", "abgebrochen"},
		{"Seed", "種子", "Startwert"},
	} {
		message.SetString(language.TraditionalChinese, s.key, s.zh)
		message.SetString(language.German, s.key, s.de)
	}
}

// newPrinter picks the closest supported locale. Unknown or malformed
// locales fall back to English.
func newPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		return message.NewPrinter(language.English)
	}
	_, idx, _ := localeMatcher.Match(tag)
	return message.NewPrinter(supportedLocales[idx])
}

// displayWidth counts East Asian wide runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printBanner(p *message.Printer, cfg config.GameConfig) {
	title := p.Sprintf("Zombie Invasion")
	pad := max(0, 41-displayWidth(title))
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[36;1m  │\033[0m  %s%s\033[36;1m│\033[0m\n", title, strings.Repeat(" ", pad))
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	seed := "random"
	if cfg.Seed != 0 {
		seed = p.Sprintf("%d", cfg.Seed)
	}
	fmt.Printf("  \033[1m%s:\033[0m %s \033[90m(tick %s)\033[0m\n\n", p.Sprintf("Seed"), seed, cfg.TickRate)
}

func printSection(p *message.Printer, title string) {
	title = p.Sprintf(title)
	lineLen := max(3, 46-displayWidth(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(p *message.Printer, label, value string) {
	label = p.Sprintf(label)
	dotsLen := max(3, 42-displayWidth(label)-utf8.RuneCountInString(value))
	fmt.Printf("  %s \033[90m%s\033[0m %s\n", label, strings.Repeat(".", dotsLen), value)
}

func printOK(p *message.Printer, msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", p.Sprintf(msg))
}

func printSummary(p *message.Printer, results []game.Result, prog progress.Progress) {
	fmt.Println()
	printSection(p, "Results")
	for i, r := range results {
		fmt.Printf("  \033[1m%s\033[0m  %s\n", p.Sprintf("Round %d", i+1), p.Sprintf(r.Outcome.String()))
		printStat(p, "Distance", p.Sprintf("%.1f", r.Distance))
		printStat(p, "Kills", p.Sprintf("%d", r.Kills))
		printStat(p, "Accuracy", accuracy(p, r.Hits, r.ShotsFired))
		printStat(p, "Damage taken", p.Sprintf("%d", r.DamageTaken))
	}

	fmt.Println()
	printSection(p, "Career")
	printStat(p, "Runs played", p.Sprintf("%d", prog.RunsPlayed))
	printStat(p, "Victories", p.Sprintf("%d", prog.Victories))
	printStat(p, "Defeats", p.Sprintf("%d", prog.Defeats))
	printStat(p, "Best distance", p.Sprintf("%.1f", prog.BestDistance))
	printStat(p, "Kills", p.Sprintf("%d", prog.TotalKills))
	fmt.Println()
}

func accuracy(p *message.Printer, hits, shots int) string {
	if shots == 0 {
		return "-"
	}
	return p.Sprintf("%.0f%%", 100*float64(hits)/float64(shots))
}
