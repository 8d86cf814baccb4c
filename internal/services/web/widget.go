package web

import (
	"bytes"
	"context"

	"github.com/louisbranch/les-coureurs/internal/services/web/dashboard"
)

// RenderWidget renders the opening dashboard as a standalone, control-free
// HTML document for hosts that embed it.
func RenderWidget(ctx context.Context) (string, error) {
	v := newPageView(dashboard.NewState(dashboard.DefaultContent()))
	v.readOnly = true
	var buf bytes.Buffer
	if err := dashboardPage(v).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
