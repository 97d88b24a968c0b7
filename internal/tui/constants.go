package tui

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Viewport Padding and Borders
	ViewportBorderWidth = 2 // Width consumed by borders

	// Layout
	SidebarMinWidth     = 32  // Minimum endpoint list width
	SidebarWidthPercent = 30  // Endpoint list share of the terminal width
	EditorWidthPercent  = 35  // Request editor share of the terminal width
	NarrowLayoutWidth   = 100 // Below this the sidebar takes a fixed third
	StatusBarHeight     = 1
	HeaderHeight        = 1
	BodyEditorHeight    = 10 // Lines of the body textarea

	// Request editor rows besides the body: method/path, token, filters, labels
	EditorChromeLines = 9
)
