package formatter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/domain"
)

// FormatSlot renders a smart_slot result as a box. Diagnostic rows appear
// only when the response carries them.
func FormatSlot(resp *contract.SmartSlotResponse, now time.Time) string {
	var b strings.Builder

	start := resp.Slot
	if ts, err := domain.ParseTimestamp(resp.Slot, now.Location()); err == nil {
		start += "  " + Dim("("+RelativeDayFrom(ts.Time, now)+")")
	}
	fmt.Fprintf(&b, "%s  %s\n", Dim("Start "), Bold(start))
	if resp.SlotEnd != "" {
		fmt.Fprintf(&b, "%s  %s\n", Dim("End   "), resp.SlotEnd)
	}
	if resp.TotalMinutes != nil {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Length"), FormatMinutes(*resp.TotalMinutes))
	}
	if resp.Feasible != nil {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Status"), FeasibilityBadge(*resp.Feasible))
	}
	if len(resp.Tasks) > 0 {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Tasks "), strings.Join(taskLabels(resp.Tasks), ", "))
	}
	if n := len(resp.Skipped); n > 0 {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Skip  "), StyleYellow.Render(fmt.Sprintf("%d malformed event(s)", n)))
	}
	return RenderBox("Next slot", strings.TrimRight(b.String(), "\n"))
}

// FormatReschedule renders the resolved events as a table.
func FormatReschedule(resp *contract.RescheduleResponse) string {
	if len(resp.Events) == 0 {
		return Dim("No events.") + "\n"
	}
	rows := make([][]string, 0, len(resp.Events))
	for _, fields := range resp.Events {
		rows = append(rows, []string{
			fieldLabel(fields, "id"),
			fieldLabel(fields, "title"),
			fieldLabel(fields, "start"),
			fieldLabel(fields, "end"),
		})
	}
	out := Header("Schedule") + "\n" + RenderTable([]string{"ID", "TITLE", "START", "END"}, rows)
	return out + diagnosticsFooter(resp.Shifted, resp.Conflicts, resp.Skipped)
}

// FormatConflicts renders a reschedule_conflicts result as a table.
func FormatConflicts(resp *contract.ConflictsResponse) string {
	if len(resp.Events) == 0 {
		return Dim("No events.") + "\n"
	}
	rows := make([][]string, 0, len(resp.Events))
	for _, e := range resp.Events {
		rows = append(rows, []string{rawLabel(e.ID), e.Start, e.End})
	}
	out := Header("Schedule") + "\n" + RenderTable([]string{"ID", "START", "END"}, rows)
	return out + diagnosticsFooter(resp.Shifted, resp.Conflicts, resp.Skipped)
}

// FormatEvents renders stored events with their day relative to now.
func FormatEvents(events []*domain.StoredEvent, now time.Time) string {
	if len(events) == 0 {
		return Dim("No events stored.") + "\n"
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			TruncID(e.ID),
			e.Title,
			RelativeDayFrom(e.Start.Time, now),
			e.Start.String(),
			FormatMinutes(int(e.End.Sub(e.Start).Minutes())),
			fmt.Sprintf("%d", len(e.Tasks)),
		})
	}
	return Header("Events") + "\n" + RenderTable([]string{"ID", "TITLE", "DAY", "START", "LENGTH", "TASKS"}, rows)
}

// FormatImport summarises an import.
func FormatImport(resp *contract.ImportResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d event(s)\n", StyleGreen.Render("Imported"), len(resp.Imported))
	for _, s := range resp.Skipped {
		fmt.Fprintf(&b, "%s entry %d (id %s): %s\n", StyleYellow.Render("Skipped"), s.Index, rawLabel(s.ID), s.Reason)
	}
	return b.String()
}

func diagnosticsFooter(shifted, conflicts *int, skipped []contract.SkippedEvent) string {
	var parts []string
	if shifted != nil {
		parts = append(parts, fmt.Sprintf("%d moved", *shifted))
	}
	if conflicts != nil {
		parts = append(parts, fmt.Sprintf("%d conflicting pair(s)", *conflicts))
	}
	if len(skipped) > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", len(skipped)))
	}
	if len(parts) == 0 {
		return ""
	}
	return Dim(strings.Join(parts, " · ")) + "\n"
}

// rawLabel shows a JSON string as its value and anything else as JSON text.
func rawLabel(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func fieldLabel(fields contract.Fields, key string) string {
	raw, _ := fields.Get(key)
	return rawLabel(raw)
}

func taskLabels(tasks []json.RawMessage) []string {
	labels := make([]string, len(tasks))
	for i, t := range tasks {
		labels[i] = rawLabel(t)
	}
	return labels
}
