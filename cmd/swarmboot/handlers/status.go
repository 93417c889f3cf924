package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/swarmboot/internal/status"
)

// statusEntry represents a single status line for display.
type statusEntry struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}

// statusReport is the JSON shape of the status command output.
type statusReport struct {
	ClusterID  string         `json:"cluster_id"`
	NodeRole   string         `json:"node_role"`
	Membership string         `json:"membership"`
	Join       *status.Status `json:"join,omitempty"`
	Certs      *status.Status `json:"certificates,omitempty"`
}

// Status reports the node's membership state and the last recorded
// outcomes of the recurring components.
func Status(ctx context.Context, configPath string, jsonOutput bool) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	report := statusReport{
		ClusterID:  cfg.ClusterID,
		NodeRole:   cfg.NodeRole,
		Membership: "unknown",
	}

	if rt, err := newRuntime(); err == nil {
		if state, err := rt.LocalState(ctx); err == nil {
			report.Membership = state.String()
		}
	}

	if s, err := status.Read(cfg.JoinStatusFile()); err == nil {
		report.Join = s
	}
	if s, err := status.Read(cfg.Certificates.StatusFile); err == nil {
		report.Certs = s
	}

	if jsonOutput {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		fmt.Println(string(b))
		return nil
	}

	printStatusStyled(report)
	return nil
}

func statusEntries(report statusReport) []statusEntry {
	entries := []statusEntry{
		{Category: "Node", Name: "role", Value: report.NodeRole},
		{Category: "Node", Name: "membership", Value: report.Membership},
	}
	for _, group := range []struct {
		category string
		s        *status.Status
	}{
		{"Join", report.Join},
		{"Certificates", report.Certs},
	} {
		if group.s == nil {
			entries = append(entries, statusEntry{
				Category: group.category, Name: "outcome", Value: "no run recorded",
			})
			continue
		}
		entries = append(entries, statusEntry{
			Category: group.category, Name: "outcome", Value: group.s.Outcome,
		})
		if group.s.Detail != "" {
			entries = append(entries, statusEntry{
				Category: group.category, Name: "detail", Value: group.s.Detail,
			})
		}
		entries = append(entries, statusEntry{
			Category: group.category, Name: "last run",
			Value: group.s.Timestamp.Format(time.RFC3339),
		})
	}
	return entries
}

func printStatusStyled(report statusReport) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("  swarmboot status: %s", report.ClusterID)))
	fmt.Println(dimStyle.Render("  " + strings.Repeat("=", 30)))
	fmt.Println()

	currentCategory := ""
	for _, entry := range statusEntries(report) {
		if entry.Category != currentCategory {
			if currentCategory != "" {
				fmt.Println()
			}
			fmt.Println(sectionStyle.Render("  " + entry.Category))
			fmt.Println(dimStyle.Render("  " + strings.Repeat("-", 35)))
			currentCategory = entry.Category
		}
		fmt.Printf("  %s  %s\n", nameStyle.Render(fmt.Sprintf("%-12s", entry.Name)), valueStyle.Render(entry.Value))
	}
	fmt.Println()
}
