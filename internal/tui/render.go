package tui

import (
	"fmt"
	"strings"
)

// ─── Welcome Screen ─────────────────────────────────────────────────────────

func renderWelcome(version, server, mode string, width int) string {
	titleLine := logoTitleStyle.Render("Browsebot") + " " + versionStyle.Render("v"+version)

	serverDisplay := server
	if len(serverDisplay) > 40 {
		serverDisplay = serverDisplay[:37] + "..."
	}
	infoLine := welcomeInfoLabel.Render(fmt.Sprintf("%s · %s mode", serverDisplay, mode))
	hintLine := welcomeHintStyle.Render("Ask a question to start browsing, /help for commands")

	globe := renderGlobeASCIIArt()
	return fmt.Sprintf("\n%s\n\n%s\n%s\n%s\n", globe, titleLine, infoLine, hintLine)
}

const globeASCIIArt = `
            ***********
        *******************
      ****~~~~~*******~~~****
    *****~~~~~~~***~~~~~~~****
   ****~~~~~~~~~~~~~~~~~~~~****
  ****~~~~~****~~~~~~****~~~****
  ***~~~~*******~~~~*******~~***
  ***~~~~*******~~~~*******~~***
  ****~~~~~****~~~~~~****~~~****
   ****~~~~~~~~~~~~~~~~~~~~***
    *****~~~~~~~***~~~~~~****
      ****~~~~~*******~~****
        *******************
            ***********
`

func renderGlobeASCIIArt() string {
	lines := strings.Split(globeASCIIArt, "\n")
	lines = trimEmptyEdgeLines(lines)

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := countLeadingSpaces(line)
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		if minIndent > 0 && len(line) >= minIndent {
			line = line[minIndent:]
		}
		lines[i] = colorizeGlobeLine(line)
	}

	return strings.Join(lines, "\n")
}

func trimEmptyEdgeLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func countLeadingSpaces(s string) int {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}

func colorizeGlobeLine(line string) string {
	const (
		stylePlain = iota
		styleBody
		styleWave
	)

	styleFor := func(r rune) int {
		switch r {
		case '*', '%', '@':
			return styleBody
		case '~', '+':
			return styleWave
		default:
			return stylePlain
		}
	}

	render := func(style int, s string) string {
		switch style {
		case styleBody:
			return logoBodyStyle.Render(s)
		case styleWave:
			return logoWaveStyle.Render(s)
		default:
			return s
		}
	}

	var out strings.Builder
	var run strings.Builder
	currentStyle := stylePlain
	first := true

	flush := func() {
		if run.Len() == 0 {
			return
		}
		out.WriteString(render(currentStyle, run.String()))
		run.Reset()
	}

	for _, r := range line {
		nextStyle := styleFor(r)
		if first {
			currentStyle = nextStyle
			first = false
		} else if nextStyle != currentStyle {
			flush()
			currentStyle = nextStyle
		}
		run.WriteRune(r)
	}

	flush()
	return out.String()
}
