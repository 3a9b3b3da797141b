package eventloop

import "github.com/voiceterm/voiceterm/internal/hud"

// renderBanner renders the current HUD frame, honoring suppression and
// overlay occlusion (an active overlay always yields a zero-height HUD,
// since the overlay owns every row it reserves).
func renderBanner(s *State) hud.StatusBanner {
	if s.Overlay.IsActive() {
		return hud.StatusBanner{Height: 0}
	}
	return hud.Render(s.HUD)
}
