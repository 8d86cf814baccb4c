// Package branding holds the user-facing product names.
package branding

// AppName is the product name shown in page titles and MCP implementation info.
const AppName = "Les Coureurs"

// FactionName is the courier faction the dashboard speaks for.
const FactionName = "LES COUREURS"
