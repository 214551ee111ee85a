// Package logging provides leveled, timestamped logging for drone actors.
package logging

import (
	"fmt"
	"log"
	"time"
)

// Infof prints an informational message tagged with the actor name.
func Infof(actor, msg string, args ...any) {
	log.Printf("[INFO] %s | %s | %s", time.Now().Format(time.RFC3339), actor, fmt.Sprintf(msg, args...))
}

// Warnf prints a warning message tagged with the actor name.
func Warnf(actor, msg string, args ...any) {
	log.Printf("[WARN] %s | %s | %s", time.Now().Format(time.RFC3339), actor, fmt.Sprintf(msg, args...))
}

// Errorf prints an error message tagged with the actor name.
func Errorf(actor, msg string, args ...any) {
	log.Printf("[ERROR] %s | %s | %s", time.Now().Format(time.RFC3339), actor, fmt.Sprintf(msg, args...))
}
