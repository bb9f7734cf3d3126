package api

import (
	"net/url"

	"eventdesk/internal/domain/user"
)

// ImageURL resolves an avatar or asset reference for display. Absolute
// http(s) URLs pass through; server-relative paths go through the image
// endpoint; an empty reference yields "".
func (c *Client) ImageURL(ref string) string {
	return ImageURL(c.imageURL, ref)
}

// ImageURL resolves ref against the image endpoint.
func ImageURL(endpoint, ref string) string {
	if ref == "" {
		return ""
	}
	if user.IsExternalURL(ref) {
		return ref
	}
	return endpoint + "?path=" + url.QueryEscape(ref)
}
