package client

import (
	"fmt"
	"time"

	"github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/object"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.ClearScreen()
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: c.chunkWriter,
		Frame:  c.frame,
	}

	if c.state.GameState != GameStateStart {
		c.drawables = c.session.Drawables(c.drawables[:0])
		player := object.Drawable(c.session.Player)
		blinkOn := object.ShouldRenderBlink(c.session.Invincible, config.PlayerBlinkFrequency, config.ClientTargetFPS)
		for _, d := range c.drawables {
			// Skip drawing player when blinking (invincible)
			if d == player && !blinkOn {
				continue
			}
			if err := d.Draw(ctx); err != nil {
				return err
			}
		}
		clear(c.drawables)
	}
	for _, p := range c.particles {
		if err := p.Draw(ctx); err != nil {
			return err
		}
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	for i := range c.popups {
		if err := c.popups[i].Draw(ctx); err != nil {
			return err
		}
	}

	c.drawUI()

	return c.chunkWriter.Flush()
}

// writeText writes s at a 1-based canvas cell and marks the cells dirty,
// so the canvas paints over the text once it is gone.
func (c *Client) writeText(col, row int, s string) {
	if row < 1 || row > c.canvas.TerminalHeight() {
		return
	}
	col = max(col, 1)
	if room := c.canvas.TerminalWidth() - col + 1; len(s) > room {
		if room <= 0 {
			return
		}
		s = s[:room]
	}
	c.chunkWriter.WriteAt(col, row, s)
	c.canvas.MarkTextDirty(col, row, len(s))
}

// writeCentered writes s centered on the given row.
func (c *Client) writeCentered(row int, s string) {
	c.writeText(c.canvas.TerminalWidth()/2-len(s)/2+1, row, s)
}

// drawUI draws the game UI overlay.
func (c *Client) drawUI() {
	centerY := c.canvas.TerminalHeight() / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerY)
		return
	}

	switch c.state.GameState {
	case GameStateStart:
		c.drawStartScreen(centerY)
	case GameStatePlaying:
		c.drawPlayingHUD()
	case GameStateOver:
		c.drawPlayingHUD()
		c.drawOverScreen(centerY)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerY int) {
	c.writeCentered(centerY-2, "INACTIVITY WARNING")
	c.writeCentered(centerY, fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	))
	c.writeCentered(centerY+2, "Press any key to continue")
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerY int) {
	// ASCII art title (figlet "small" font)
	titleArt := []string{
		`  ___   _   _  _ _____ _     ___ _   _ ___ _  _  `,
		` / __| /_\ | \| |_   _/_\   | _ \ | | / __| || | `,
		` \__ \/ _ \| .`+"`"+` | | |/ _ \  |   / |_| \__ \ __ | `,
		` |___/_/ \_\_|\_| |_/_/ \_\ |_|_\\___/|___/_||_| `,
		`                                                 `,
	}

	titleStartY := centerY - 8
	for i, line := range titleArt {
		c.writeCentered(titleStartY+i, line)
	}

	c.writeCentered(titleStartY+len(titleArt)+1, "~ Keep the sleigh in the air, gather the reindeer ~")

	controlsY := titleStartY + len(titleArt) + 3
	c.writeCentered(controlsY, "Controls")
	controlLines := []string{
		"SPACE / W / Up (hold) . . Fly",
		"ENTER  . . . . . . . . Restart",
		"Q  . . . . . . . . . . . Quit",
	}
	for i, line := range controlLines {
		c.writeCentered(controlsY+1+i, line)
	}

	if c.state.HighScore > 0 {
		c.writeCentered(controlsY+len(controlLines)+2, fmt.Sprintf("High score: %d", c.state.HighScore))
	}

	// Blinking start prompt
	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(controlsY+len(controlLines)+4, ">>  Press SPACE to Start  <<")
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD() {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()

	c.writeText(2, 1, fmt.Sprintf("Score: %-6d Reindeer: %-3d Level: %-3d",
		c.session.Score, len(c.session.Followers), c.session.Level()))

	best := fmt.Sprintf("Best: %-6d", max(c.state.HighScore, c.session.Score))
	c.writeText(termWidth-len(best), 1, best)

	if c.state.noticeFrames > 0 {
		c.writeCentered(3, c.state.notice)
	}

	if c.server != nil {
		players := fmt.Sprintf("Players: %-4d", c.server.GetSnapshot().Players)
		c.writeText(termWidth-len(players), termHeight, players)
	}
}

// drawOverScreen draws the round summary with the leaderboard.
func (c *Client) drawOverScreen(centerY int) {
	titleArt := []string{
		`   ___   _   __  __ ___    _____   _____ ___  `,
		`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
		` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
		`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
	}
	rows := c.leaderboardRows()

	y := centerY - (len(titleArt)+len(rows)+8)/2
	for i, line := range titleArt {
		c.writeCentered(y+i, line)
	}
	y += len(titleArt) + 1

	res := c.session.Result()
	c.writeCentered(y, fmt.Sprintf("Score: %d   Reindeer: %d   Level: %d", res.Score, res.Followers, res.Level))
	y++
	if c.state.NewRecord {
		c.writeCentered(y, "*** NEW HIGH SCORE ***")
	}
	y += 2

	if len(rows) > 0 {
		c.writeCentered(y, "Leaderboard")
		for i, row := range rows {
			c.writeCentered(y+1+i, row)
		}
		y += len(rows) + 2
	}

	remaining := float64(c.session.Tuning().RestartDelayFrames-c.state.overFrames) / config.ClientTargetFPS
	prompt := fmt.Sprintf("Next round in %.1f s", max(remaining, 0))
	if c.state.overFrames >= config.RestartLockFrames {
		prompt += ", press SPACE to fly now"
	}
	c.writeCentered(y, fmt.Sprintf("%-50s", prompt))
}

// leaderboardRows formats the lobby's best results when connected to a
// lobby, otherwise the reporter's cached leaderboard.
func (c *Client) leaderboardRows() []string {
	var rows []string
	if c.server != nil {
		for i, e := range c.server.GetSnapshot().TopScores {
			rows = append(rows, fmt.Sprintf("%d. %-16s %6d  (%d reindeer)", i+1, e.Username, e.Score, e.Followers))
		}
		return rows
	}
	if c.reporter == nil {
		return nil
	}
	board := c.reporter.Leaderboard()
	for i, e := range board[:min(len(board), config.LeaderboardSize)] {
		rows = append(rows, fmt.Sprintf("%d. %-16s %6d  (%d reindeer)", i+1, e.PlayerName, e.Score, e.Followers))
	}
	return rows
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerY int) {
	c.writeCentered(centerY-3, "SERVER SHUTTING DOWN")
	c.writeCentered(centerY-1, "The server is restarting for maintenance.")
	c.writeCentered(centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.writeCentered(centerY+4, "Press Q to disconnect now")
}
