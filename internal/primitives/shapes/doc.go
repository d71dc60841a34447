// Package shapes generates SVG path data for the geometric primitives that
// generated animations may draw: rectangles, circles, ellipses, triangles,
// stars, polygons, hearts and pie segments.
//
// Every make* function returns a Shape whose path is positioned inside its own
// bounding box starting at the origin, so callers can place it with a plain
// translate transform.
package shapes
