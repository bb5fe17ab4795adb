// Package activity scores editor events and watches for idle periods.
// Events carry per-kind weights; batches flush once enough activity has
// accumulated, and a quiet stretch past the idle threshold fires the idle
// callback exactly once until activity resumes.
package activity
