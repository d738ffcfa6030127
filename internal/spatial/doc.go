// Package spatial holds the planar geometry used by the assist engine:
// containment, centroids, principal axes, convex hulls and minimum-area
// rectangle fitting. All functions are pure and operate on projected
// coordinates.
package spatial
