package logging

import (
	"context"
	"testing"
)

func TestWithSessionID(t *testing.T) {
	ctx := WithSessionID(context.Background(), "42")

	if got := GetSessionID(ctx); got != "42" {
		t.Errorf("GetSessionID() = %q, want %q", got, "42")
	}
}

func TestWithView(t *testing.T) {
	ctx := WithView(context.Background(), "timer")

	if got := GetView(ctx); got != "timer" {
		t.Errorf("GetView() = %q, want %q", got, "timer")
	}
}

func TestGetters_NotPresent(t *testing.T) {
	ctx := context.Background()

	if got := GetSessionID(ctx); got != "" {
		t.Errorf("GetSessionID() = %q, want empty string", got)
	}
	if got := GetView(ctx); got != "" {
		t.Errorf("GetView() = %q, want empty string", got)
	}
}
