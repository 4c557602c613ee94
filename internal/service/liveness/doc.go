// Package liveness runs the periodic disconnect sweep.
package liveness
