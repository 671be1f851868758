// Package loop runs a single-player terminal game.
package loop

import (
	"bufio"
	"io"

	"github.com/tomz197/santa-rush/internal/loop/client"
)

// Options configures a local game. See client.ClientOptions.
type Options = client.ClientOptions

// Run plays on the given terminal streams until the player quits or the
// input closes. No lobby is involved: the player only sees their own rounds.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	c, err := client.NewClient(nil, r, w, opts)
	if err != nil {
		return err
	}
	return c.Run()
}
