// ===== internal/assets/icons.go =====
package assets

// menubarIconB64 is the template icon shown in the menu bar, as a
// base64-encoded PNG. A small placeholder glyph; the host renders
// template images in monochrome so shape is all that matters.
// TODO: per-count glyphs (0-9) matching the server's web app art.
const menubarIconB64 = "iVBORw0KGgoAAAANSUhEUgAAABYAAAAWCAYAAADEtGw7AAAAOElEQVR42mNgGG7gPwFMdQPJsuA/mZgmhhI0nCYG/6cSHjV41OCBNHjo5TyaFkI0LTZpWtAPXgAABU4S/Ek+VhwAAAAASUVORK5CYII="

// MenubarIcon returns the base64 template image for the menu-bar item.
// count is how many people are currently home; pass a negative count
// when the number is unknown.
func MenubarIcon(count int) string {
	return menubarIconB64
}
