package main

import (
	"fmt"
)

// ANSI color helpers
const (
	teal  = "\033[38;2;42;169;160m"
	gray  = "\033[38;5;242m"
	white = "\033[1;37m"
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"
)

func main() {
	info1 := white + "Browsebot " + gray + "v0.1.0" + reset
	info2 := gray + "localhost:8000 · streaming mode" + reset

	fmt.Println()
	fmt.Println(bold + "═══ Pick a globe logo ═══" + reset)

	// ── Option A: Compact globe ──
	fmt.Println()
	fmt.Println(dim + "Option A — Compact globe" + reset)
	fmt.Println()
	fmt.Printf("    %s▄▀▀▀▄%s\n", gray, reset)
	fmt.Printf("   %s▐%s%s~%s%s●%s%s~%s%s▌%s   %s\n", gray, reset, teal, reset, white, reset, teal, reset, gray, reset, info1)
	fmt.Printf("    %s▀▄▄▄▀%s    %s\n", gray, reset, info2)

	// ── Option B: Globe with orbit ──
	fmt.Println()
	fmt.Println(dim + "Option B — Globe with orbit" + reset)
	fmt.Println()
	fmt.Printf("   %s▄▀▀▄%s%s━━▶%s\n", gray, reset, teal, reset)
	fmt.Printf("   %s█%s%s~~%s%s█%s      %s\n", gray, reset, teal, reset, gray, reset, info1)
	fmt.Printf("   %s▀▄▄▀%s      %s\n", gray, reset, info2)

	// ── Option C: Magnifier over waves ──
	fmt.Println()
	fmt.Println(dim + "Option C — Magnifier over waves" + reset)
	fmt.Println()
	fmt.Printf("   %s▄▀▀▄%s\n", gray, reset)
	fmt.Printf("   %s█%s%s~~%s%s█▄%s   %s\n", gray, reset, teal, reset, gray, reset, info1)
	fmt.Printf("   %s▀▄▄▀ ▀%s  %s\n", gray, reset, info2)

	fmt.Println()
	fmt.Println(dim + "Which one? (A/B/C)  The big welcome art lives in internal/tui/render.go" + reset)
	fmt.Println()
}
