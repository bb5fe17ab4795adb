// Package project detects which project a file belongs to: the project
// root, a display name, the project type, and the checked-out git branch.
// Lookups go through an explicit TTL cache so repeated detections for the
// same file avoid filesystem walks.
package project
