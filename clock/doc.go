// Package clock abstracts time for the window and cooldown arithmetic so
// tests can drive it deterministically.
package clock
