// Package thumbs generates thumbnail and preview images for archive
// files that can be rendered directly by imagemagick.
package thumbs
