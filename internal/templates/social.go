package templates

import "strings"

// SocialNetwork is a recognised network and its placeholder icon.
type SocialNetwork struct {
	Key     string
	Label   string
	IconURL string
}

// SocialNetworks is ordered; the first four make up the default icon row.
var SocialNetworks = []SocialNetwork{
	{Key: "facebook", Label: "Facebook", IconURL: "https://placehold.co/30x30/3b5998/ffffff?text=f"},
	{Key: "twitter", Label: "Twitter", IconURL: "https://placehold.co/30x30/1da1f2/ffffff?text=t"},
	{Key: "instagram", Label: "Instagram", IconURL: "https://placehold.co/30x30/e1306c/ffffff?text=i"},
	{Key: "linkedin", Label: "LinkedIn", IconURL: "https://placehold.co/30x30/0077b5/ffffff?text=in"},
	{Key: "youtube", Label: "YouTube", IconURL: "https://placehold.co/30x30/ff0000/ffffff?text=yt"},
	{Key: "github", Label: "GitHub", IconURL: "https://placehold.co/30x30/333333/ffffff?text=gh"},
	{Key: "x.com", Label: "X", IconURL: "https://placehold.co/30x30/1da1f2/ffffff?text=t"},
}

const defaultIconCount = 4

// Attribution is the creator line appended to footers.
const Attribution = `<div style="text-align: center; margin-top: 10px;">Created by YourName</div>`

// HasSocialIcon reports whether markup already references a known network.
func HasSocialIcon(markup string) bool {
	lower := strings.ToLower(markup)
	for _, n := range SocialNetworks {
		if strings.Contains(lower, n.Key) {
			return true
		}
	}
	return false
}

// SocialIconRow renders the default row of icon links.
func SocialIconRow() string {
	var b strings.Builder
	b.WriteString(`<div style="display: flex; gap: 10px; justify-content: center; margin: 10px 0;">`)
	for _, n := range SocialNetworks[:defaultIconCount] {
		b.WriteString(`<a href="#" style="text-decoration: none;"><img src="`)
		b.WriteString(n.IconURL)
		b.WriteString(`" alt="`)
		b.WriteString(n.Key)
		b.WriteString(`" style="width: 30px; height: 30px; border-radius: 50%;" /></a>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}
