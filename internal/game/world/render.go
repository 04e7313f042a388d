package world

import (
	"strings"

	"github.com/mitchelldurbincs/GeneralsBot/internal/game/core"
)

const (
	emptySymbol    = "·"
	citySymbol     = "⬢"
	generalSymbol  = "♔"
	mountainSymbol = "▲"
	fogSymbol      = "░"
	playerSymbols  = "ABCDEFGH"
)

// String renders the board as plain text for debug logs.
func (w *World) String() string {
	if !w.Ready() {
		return "<no board>"
	}
	width, height := w.grid.W, w.grid.H

	var sb strings.Builder
	sb.Grow((width*3+4)*(height+1) + 64)

	sb.WriteString("   ")
	for x := 0; x < width; x++ {
		sb.WriteString(core.IntToStringFixedWidth(x, 3))
	}
	sb.WriteString("\n")

	generals := make(map[int]struct{}, len(w.generals))
	for _, g := range w.generals {
		if g >= 0 {
			generals[g] = struct{}{}
		}
	}

	for y := 0; y < height; y++ {
		sb.WriteString(core.IntToStringFixedWidth(y, 2))
		sb.WriteString(" ")
		for x := 0; x < width; x++ {
			sb.WriteString(" ")
			w.writeCell(&sb, w.grid.Index(x, y), generals)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// writeCell writes a two column cell.
func (w *World) writeCell(sb *strings.Builder, i int, generals map[int]struct{}) {
	t, army := w.terrain[i], w.armies[i]
	_, isGeneral := generals[i]

	switch {
	case t == core.TileMountain:
		sb.WriteString(" " + mountainSymbol)
	case t == core.TileUnknownObstacle:
		sb.WriteString(fogSymbol + mountainSymbol)
	case t == core.TileUnknown:
		sb.WriteString(fogSymbol + fogSymbol)
	case core.IsPlayerTile(t) && isGeneral:
		sb.WriteByte(playerSymbols[t%len(playerSymbols)])
		sb.WriteString(generalSymbol)
	case core.IsPlayerTile(t) && w.IsCity(i):
		sb.WriteByte(playerSymbols[t%len(playerSymbols)])
		sb.WriteString(citySymbol)
	case core.IsPlayerTile(t):
		sb.WriteByte(playerSymbols[t%len(playerSymbols)])
		writeArmy(sb, army, 1)
	case w.IsCity(i):
		sb.WriteString(" " + citySymbol)
	case army == 0:
		sb.WriteString(" " + emptySymbol)
	default:
		writeArmy(sb, army, 2)
	}
}

func writeArmy(sb *strings.Builder, army, width int) {
	switch {
	case army >= 100 && width == 1:
		sb.WriteString("+")
	case army >= 100:
		sb.WriteString("++")
	case army >= 10 && width == 1:
		sb.WriteString("+")
	default:
		sb.WriteString(core.IntToStringFixedWidth(army, width))
	}
}
