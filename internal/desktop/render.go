package desktop

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/object"
)

// Palette.
var (
	skyColor      = colornames.Midnightblue
	pillarColor   = colornames.Forestgreen
	capColor      = colornames.Darkgreen
	sleighColor   = colornames.Firebrick
	trimColor     = colornames.Gold
	reindeerColor = colornames.Saddlebrown
	noseColor     = colornames.Red
	giftColor     = colornames.Crimson
	particleColor = colornames.Snow
	shadeColor    = color.RGBA{A: 160}
)

// debugLineHeight is the height of a line of ebitenutil debug text.
const debugLineHeight = 16

// sprites are the images drawn rotated. Images can only be created once
// ebiten runs, so they are built on the first Draw.
type sprites struct {
	sleigh *ebiten.Image
	gift   *ebiten.Image
}

func newSprites() *sprites {
	sleigh := ebiten.NewImage(int(object.PlayerWidth), int(object.PlayerHeight*0.7))
	w, h := float32(sleigh.Bounds().Dx()), float32(sleigh.Bounds().Dy())
	vector.FillRect(sleigh, 0, 0, w, h, sleighColor, false)
	vector.StrokeRect(sleigh, 1, 1, w-2, h-2, 3, trimColor, false)

	gift := ebiten.NewImage(int(object.GiftSize), int(object.GiftSize))
	s := float32(object.GiftSize)
	vector.FillRect(gift, 0, 0, s, s, giftColor, false)
	vector.FillRect(gift, s/2-3, 0, 6, s, trimColor, false)
	vector.FillRect(gift, 0, s/2-3, s, 6, trimColor, false)

	return &sprites{sleigh: sleigh, gift: gift}
}

// Draw renders the current frame.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.sprites == nil {
		g.sprites = newSprites()
	}
	screen.Fill(skyColor)

	if g.state != GameStateStart {
		g.drawWorld(screen)
	}
	for _, p := range g.particles {
		vector.FillRect(screen, float32(p.X)-1, float32(p.Y)-1, 3, 3, particleColor, false)
	}

	switch g.state {
	case GameStateStart:
		g.drawStart(screen)
	case GameStatePlaying:
		g.drawHUD(screen)
	case GameStateOver:
		g.drawHUD(screen)
		g.drawOver(screen)
	}
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	height := float32(g.session.Screen().Height)

	for _, o := range g.session.Obstacles.Obstacles {
		x, w := float32(o.X), float32(o.Width)
		gapTop, gapBottom := float32(o.GapY), float32(o.GapY+o.GapSize)
		vector.FillRect(screen, x, 0, w, gapTop, pillarColor, false)
		vector.FillRect(screen, x, gapBottom, w, height-gapBottom, pillarColor, false)
		vector.FillRect(screen, x-5, gapTop-20, w+10, 20, capColor, false)
		vector.FillRect(screen, x-5, gapBottom, w+10, 20, capColor, false)
	}

	for _, p := range g.session.Pickups.Pickups {
		if p.Collected {
			continue
		}
		switch p.Kind {
		case object.PickupReindeer:
			vector.FillCircle(screen, float32(p.X), float32(p.Y), object.ReindeerRadius, reindeerColor, true)
			vector.FillCircle(screen, float32(p.X)+object.ReindeerRadius*0.8, float32(p.Y), 4, noseColor, true)
		case object.PickupGift:
			g.drawRotated(screen, g.sprites.gift, p.X, p.Y, p.Rotation)
		}
	}

	for i := len(g.session.Followers) - 1; i >= 0; i-- {
		f := g.session.Followers[i]
		x, y := float32(f.X), float32(f.Y)
		w, h := float32(f.Width), float32(f.Height)
		vector.FillRect(screen, x+w*0.15, y+h*0.35, w*0.6, h*0.35, reindeerColor, true)
		vector.FillCircle(screen, x+w*0.8, y+h*0.3, h*0.15, reindeerColor, true)
		vector.FillCircle(screen, x+w*0.92, y+h*0.32, 4, noseColor, true)
	}

	p := g.session.Player
	if object.ShouldRenderBlink(g.session.Invincible, config.PlayerBlinkFrequency, config.ClientTargetFPS) {
		g.drawRotated(screen, g.sprites.sleigh, p.X+p.Width/2, p.Y+p.Height/2, p.Rotation()*math.Pi/180)
	}
}

// drawRotated draws img centered on (cx, cy), rotated by angle radians.
func (g *Game) drawRotated(screen, img *ebiten.Image, cx, cy, angle float64) {
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Rotate(angle)
	op.GeoM.Translate(cx, cy)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Score: %d   Reindeer: %d   Level: %d",
		g.session.Score, len(g.session.Followers), g.session.Level()), 10, 10)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Best: %d", max(g.highScore, g.session.Score)),
		int(g.session.Screen().Width)-110, 10)
}

func (g *Game) drawStart(screen *ebiten.Image) {
	lines := []string{
		"SANTA RUSH",
		"",
		"Hold SPACE, UP, W, the mouse button or touch to fly.",
		"Fly through the gaps and gather the reindeer.",
		"ESC to quit.",
	}
	if g.highScore > 0 {
		lines = append(lines, "", fmt.Sprintf("High score: %d", g.highScore))
	}
	lines = append(lines, "", ">> Press SPACE to start <<")
	g.drawPanel(screen, lines)
}

func (g *Game) drawOver(screen *ebiten.Image) {
	res := g.session.Result()
	lines := []string{
		"GAME OVER",
		"",
		fmt.Sprintf("Score: %d   Reindeer: %d   Level: %d", res.Score, res.Followers, res.Level),
	}
	if g.newRecord {
		lines = append(lines, "*** NEW HIGH SCORE ***")
	}
	if g.reporter != nil {
		board := g.reporter.Leaderboard()
		if len(board) > 0 {
			lines = append(lines, "", "Leaderboard")
		}
		for i, e := range board[:min(len(board), config.LeaderboardSize)] {
			lines = append(lines, fmt.Sprintf("%d. %-16s %6d", i+1, e.PlayerName, e.Score))
		}
	}
	remaining := float64(g.session.Tuning().RestartDelayFrames-g.overFrames) / config.ClientTargetFPS
	lines = append(lines, "", fmt.Sprintf("Next round in %.1f s", max(remaining, 0)))
	g.drawPanel(screen, lines)
}

// drawPanel draws lines of text on a shaded box in the middle of the canvas.
func (g *Game) drawPanel(screen *ebiten.Image, lines []string) {
	bounds := g.session.Screen()
	h := float32(len(lines)*debugLineHeight + 20)
	w := float32(bounds.Width * 0.7)
	x := (float32(bounds.Width) - w) / 2
	y := (float32(bounds.Height) - h) / 2
	vector.FillRect(screen, x, y, w, h, shadeColor, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, int(x)+20, int(y)+10+i*debugLineHeight)
	}
}
