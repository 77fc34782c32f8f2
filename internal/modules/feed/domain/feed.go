package domain

// ContentType returns the HTTP content type of a rendered feed
func (x Format) ContentType() string {
	switch x {
	case FormatAtom:
		return "application/atom+xml; charset=utf-8"
	case FormatJson:
		return "application/feed+json; charset=utf-8"
	default:
		return "application/rss+xml; charset=utf-8"
	}
}
