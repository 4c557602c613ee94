// Package alarm models the intrusion switch shared by every room of an
// installation: who set it, when, and whether motion raises an alarm.
package alarm
