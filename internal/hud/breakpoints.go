package hud

// Width breakpoints selecting banner layout. Each names the column width
// below which the next-narrower layout takes over; at the threshold
// itself the wider layout is selected.
const (
	// BreakpointMinimal is where even the Minimal recording
	// indicator sheds its meter/status text down to just the glyph+label.
	BreakpointMinimal = 25
	// BreakpointCompact is where Full degrades to Minimal entirely.
	BreakpointCompact = 40
	// BreakpointMedium is where the Full button row gains inter-button
	// spacing instead of packing labels edge to edge.
	BreakpointMedium = 60
	// BreakpointFull is where the Full button row also carries a leading
	// recording-state glyph alongside the buttons.
	BreakpointFull = 80
)
