package main

import (
	"fmt"
	"image"
	"voxmap/internal/world"

	"github.com/gdamore/tcell/v2"
)

// runTUI shows the minimap with half-block cells: each cell carries two
// image rows, the upper one as foreground.
func runTUI(p *preview) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	draw := func() {
		screen.Clear()
		w, h := screen.Size()
		if img := p.render(); img != nil {
			drawImage(screen, img, w, h-1)
		}
		st := p.minimap.Stats()
		status := fmt.Sprintf("%s | %d,%d | cached %d | m mode, s shape, arrows move, q quit",
			p.minimap.ModeDef().Label, p.center.X, p.center.Z, st.Cached)
		drawText(screen, 0, h-1, status, tcell.StyleDefault.Reverse(true))
		screen.Show()
	}
	draw()

	step := world.BlockSize
	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
			draw()
		case *tcell.EventKey:
			pos := p.center
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyUp:
				pos.Z += step
			case tcell.KeyDown:
				pos.Z -= step
			case tcell.KeyLeft:
				pos.X -= step
			case tcell.KeyRight:
				pos.X += step
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'q':
					return nil
				case 'm':
					p.minimap.NextMode()
				case 's':
					p.minimap.ToggleShape()
				}
			}
			if pos != p.center {
				p.moveTo(pos)
			}
			draw()
		}
	}
}

func drawImage(screen tcell.Screen, img *image.NRGBA, cols, rows int) {
	b := img.Bounds()
	// fit the square image into cols x rows*2 pixels
	side := min(cols, rows*2)
	if side <= 0 {
		return
	}
	sample := func(px, py int) tcell.Color {
		c := img.NRGBAAt(b.Min.X+px*b.Dx()/side, b.Min.Y+py*b.Dy()/side)
		if c.A == 0 {
			return tcell.ColorReset
		}
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	for row := 0; row < side/2; row++ {
		for col := 0; col < side; col++ {
			style := tcell.StyleDefault.Foreground(sample(col, row*2)).Background(sample(col, row*2+1))
			screen.SetContent(col, row, '▀', nil, style)
		}
	}
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
