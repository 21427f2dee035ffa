package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

// writePgn appends one game in PGN export format. Each game carries a
// GameId tag so runs can be merged and deduplicated later.
func writePgn(w io.Writer, record gameRecord, round int, aIsWhite bool) error {
	var white, black = "B", "A"
	if aIsWhite {
		white, black = "A", "B"
	}

	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "[Event %q]\n", "selfplay")
	fmt.Fprintf(sb, "[Site %q]\n", "local")
	fmt.Fprintf(sb, "[Date %q]\n", time.Now().Format("2006.01.02"))
	fmt.Fprintf(sb, "[Round %q]\n", fmt.Sprint(round))
	fmt.Fprintf(sb, "[White %q]\n", white)
	fmt.Fprintf(sb, "[Black %q]\n", black)
	fmt.Fprintf(sb, "[Result %q]\n", resultTag(record.points))
	fmt.Fprintf(sb, "[Termination %q]\n", record.comment)
	fmt.Fprintf(sb, "[GameId %q]\n", uuid.NewString())
	sb.WriteString("\n")

	var line []string
	for i := 0; i+1 < len(record.positions); i++ {
		var p = &record.positions[i]
		var move = record.positions[i+1].LastMove
		var san = chess.MoveToSAN(p, p.GenerateLegalMoves(), move)
		if p.Side == chess.White {
			line = append(line, fmt.Sprintf("%v.", i/2+1))
		}
		line = append(line, san)
	}
	line = append(line, resultTag(record.points))
	sb.WriteString(wrapText(strings.Join(line, " "), 80))
	sb.WriteString("\n\n")

	var _, err = io.WriteString(w, sb.String())
	return err
}

func wrapText(s string, width int) string {
	var sb = &strings.Builder{}
	var lineLen = 0
	for _, word := range strings.Fields(s) {
		if lineLen > 0 && lineLen+1+len(word) > width {
			sb.WriteString("\n")
			lineLen = 0
		} else if lineLen > 0 {
			sb.WriteString(" ")
			lineLen++
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}
