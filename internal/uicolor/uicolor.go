// Package uicolor provides the handful of colored terminal strings
// gatebuilder prints for build progress and errors, adapted from
// kryptco-kr's color.go (same fatih/color call pattern, renamed to the
// semantic roles this CLI actually uses).
package uicolor

import "github.com/fatih/color"

func Success(s string) string {
	c := color.New(color.FgHiGreen)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func Warning(s string) string {
	c := color.New(color.FgHiYellow)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func Failure(s string) string {
	c := color.New(color.FgHiRed)
	c.EnableColor()
	return c.SprintFunc()(s)
}

func Progress(s string) string {
	c := color.New(color.FgHiCyan)
	c.EnableColor()
	return c.SprintFunc()(s)
}
