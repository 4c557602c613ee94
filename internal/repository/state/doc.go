// Package state persists the alarm switch.
//
// The FileRepository stores and loads the switch as JSON on disk so that an
// armed installation stays armed across restarts.
package state
