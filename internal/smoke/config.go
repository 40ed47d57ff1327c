// Package smoke drives a running activities service end to end: it fills an
// activity with generated students, checks the capacity and duplicate rules,
// and removes everyone it added.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Activity string        // Activity to fill
	Students int           // Students to sign up; 0 fills the free spots
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	LogFile  string        // Log file for run output
	Verbose  bool          // Log every request
}

// Stats holds run statistics.
type Stats struct {
	StudentsGenerated int
	SignupsAccepted   int
	SignupsFull       int
	SignupsFailed     int
	Unregistered      int
	UnregisterFailed  int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
