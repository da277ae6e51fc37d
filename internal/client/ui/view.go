package ui

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/mithaimart/internal/client/session"
)

// RenderView prints the navbar and the placeholder body of r.
func RenderView(w io.Writer, r Route, s session.State) error {
	if err := NavbarFor(s.User).Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "== %s (%s) ==\n", r.Title, r.Path)
	return err
}
