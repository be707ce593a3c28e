package qr

import (
	"fmt"
	"strings"

	"ms-fyyur/internal/booking"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// Generator renders show summaries as PNG QR codes for posters.
type Generator struct {
	// BaseURL is prepended to the show link encoded in the code, e.g. https://fyyur.example.
	BaseURL string
	Size    int
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{BaseURL: strings.TrimRight(baseURL, "/"), Size: DefaultSize}
}

// Content is the text encoded for a show.
func (g *Generator) Content(show booking.ShowEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s @ %s\n", show.ArtistName, show.VenueName)
	fmt.Fprintf(&b, "%s\n", show.StartTime.UTC().Format("Mon Jan 2 2006 15:04 MST"))
	fmt.Fprintf(&b, "%s/venues/%d", g.BaseURL, show.VenueID)
	return b.String()
}

func (g *Generator) ShowPNG(show booking.ShowEntry) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(g.Content(show), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr for show %d: %w", show.ID, err)
	}
	return png, nil
}
