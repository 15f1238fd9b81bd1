// Package render formats volumes and snapshots for terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/CristiGvl/picoDiskMon/internal/disk"
)

var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7289da")).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	StaleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7289da")).
			Bold(true).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// Mode describes the mount mode of a volume
func Mode(v disk.Volume) string {
	if v.ReadOnly() {
		return "read-only"
	}
	return "read/write"
}

// Snapshot renders every field of s as aligned label/value lines
func Snapshot(s *disk.Snapshot) string {
	rows := [][2]string{
		{"Device", s.Device},
		{"Mount point", s.Mountpoint},
		{"Filesystem", s.Filesystem},
		{"Total", disk.FormatBytes(s.Total)},
		{"Used", disk.FormatBytes(s.Used)},
		{"Free", disk.FormatBytes(s.Free)},
		{"Usage", fmt.Sprintf("%.1f%%", s.UsedPercent)},
		{"Read operations", fmt.Sprintf("%d", s.ReadCount)},
		{"Write operations", fmt.Sprintf("%d", s.WriteCount)},
		{"Read", disk.FormatBytes(s.ReadBytes)},
		{"Written", disk.FormatBytes(s.WriteBytes)},
		{"Read time", fmt.Sprintf("%d ms", s.ReadTime)},
		{"Write time", fmt.Sprintf("%d ms", s.WriteTime)},
		{"Mode", Mode(s.Volume)},
	}

	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(LabelStyle.Width(width + 2).Render(r[0] + ":"))
		b.WriteString(ValueStyle.Render(r[1]))
	}
	return b.String()
}

// Stale renders the marker shown next to a snapshot that failed to refresh
func Stale(reason string) string {
	if reason == "" {
		return StaleStyle.Render("stale")
	}
	return StaleStyle.Render("stale: " + reason)
}

// Volumes renders vols as a table
func Volumes(vols []disk.Volume) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("DEVICE", "MOUNT POINT", "FILESYSTEM", "MODE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		})

	for _, v := range vols {
		fstype := v.Filesystem
		if fstype == "" {
			fstype = "-"
		}
		t.Row(v.Device, v.Mountpoint, fstype, Mode(v))
	}

	return t.Render()
}
