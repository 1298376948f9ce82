// Package ui provides lipgloss styling for CLI output.
//
// The default [Palette] colors section titles, success and failure markers,
// warnings, and secondary help text. Command actions render through the
// package-level helpers ([Title], [OK], [Err], [Warn], [Help]) so output
// styling stays consistent across commands.
package ui
