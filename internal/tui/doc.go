/*
Package tui implements the interactive console.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern:
  - model.go: Model, modes, focus targets and messages
  - init.go: construction and program startup
  - keys.go: keyboard routing per mode and focus
  - actions.go: side effects run as tea.Cmd (send, login, token, filter, clipboard)
  - render.go: the three-panel view (endpoints, request editor, response)

# Exchanges

All requests go through console.Console. A send builds a console.Request
from the editor fields, shows a pending payload and runs Console.Send in a
tea.Cmd; the result arrives as a responseMsg. Token captures and manual
token changes reach the token field through Console.OnTokenChange.

# Notifications

Toasts are held by a shared notify.Center. Run installs a hook that
forwards each new notification to the program, which schedules its
expiry with tea.Tick.
*/
package tui
