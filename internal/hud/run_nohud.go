//go:build nohud

package hud

import "context"

// Run reports that this build has no display support.
func (v *Viewer) Run(context.Context) error {
	return ErrUnavailable
}
