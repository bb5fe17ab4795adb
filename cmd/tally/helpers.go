package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// requestInto performs one daemon round-trip and decodes the response
// payload into T.
func requestInto[T any](cmd *cobra.Command, cc *commandContext, msgType string, payload any) (*T, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	resp, err := cc.request(ctx, msgType, payload)
	if err != nil {
		return nil, err
	}

	var result T
	if len(resp.Payload) > 0 {
		if err := json.Unmarshal(resp.Payload, &result); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", resp.Type, err)
		}
	}
	return &result, nil
}

// formatMillis renders a millisecond duration as "1h 23m" or "45m" or
// "12s" for short spans.
func formatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// formatPercent renders a 0-100 value with one decimal.
func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func derefStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
