package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edulearn/internal/ui/theme"
)

const bannerArt = `
███████╗██████╗ ██╗   ██╗██╗     ███████╗ █████╗ ██████╗ ███╗   ██╗
██╔════╝██╔══██╗██║   ██║██║     ██╔════╝██╔══██╗██╔══██╗████╗  ██║
█████╗  ██║  ██║██║   ██║██║     █████╗  ███████║██████╔╝██╔██╗ ██║
██╔══╝  ██║  ██║██║   ██║██║     ██╔══╝  ██╔══██║██╔══██╗██║╚██╗██║
███████╗██████╔╝╚██████╔╝███████╗███████╗██║  ██║██║  ██║██║ ╚████║
╚══════╝╚═════╝  ╚═════╝ ╚══════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝`

// BannerWidth is the column width of the block banner.
const BannerWidth = 67

const bannerCompact = "E D U L E A R N"

// RenderBanner returns the EDULEARN banner styled in the primary color.
// Uses a compact fallback when width cannot fit the block letters.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < BannerWidth+2 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
