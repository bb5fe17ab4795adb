// Package service implements the tracking operations behind the message
// protocol: session lifecycle, statistics, settings, exports, pomodoro and
// break timers, tags, projects, and health metrics.
//
// The Service persists through the store package and publishes notifications
// through a small Publisher interface so transports stay decoupled from
// tracking logic.
package service
