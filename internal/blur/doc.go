// Package blur dims everything outside the current selection.
//
// On every layout or selection change the Blurrer clears the overlay
// surface, computes the complement of the selection with span.Invert,
// resolves each complement span to screen geometry and draws one overlay
// per resolvable span. Nothing is drawn while the selection is empty.
//
// Plan is the pure part of a refresh and can be tested without a surface.
package blur
