// Package branding centralizes user-facing product naming.
package branding

// AppName is the user-facing product name.
const AppName = "Wartide"
