// Package web serves the mission-control dashboard.
//
// Each browser is tracked by an lc_dashboard cookie that maps to its own
// in-memory dashboard.State. Pages are templ components; buttons and forms
// carry htmx attributes so transitions swap the dashboard in place, and
// fall back to plain form posts that redirect to "/" without JavaScript.
package web
