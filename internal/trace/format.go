package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	// FormatText is human-readable text.
	FormatText Format = iota
	// FormatNDJSON is newline-delimited JSON.
	FormatNDJSON
)

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	default:
		return formatText(ev)
	}
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev Event) []byte {
	type jsonEvent struct {
		Time   string `json:"time"`
		Seq    uint64 `json:"seq"`
		Kind   string `json:"kind"`
		Prim   string `json:"prim"`
		Handle uint64 `json:"handle"`
		Count  int64  `json:"count,omitempty"`
		Label  string `json:"label,omitempty"`
		Detail string `json:"detail,omitempty"`
	}

	j := jsonEvent{
		Time:   ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:    ev.Seq,
		Kind:   ev.Kind.String(),
		Prim:   ev.Prim.String(),
		Handle: ev.Handle,
		Count:  ev.Count,
		Label:  ev.Label,
		Detail: ev.Detail,
	}

	data, _ := json.Marshal(j)
	data = append(data, '\n')
	return data
}

// formatText formats an event as human-readable text.
// Format: [seq] prim#handle kind rc=N (detail)
func formatText(ev Event) []byte {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%4d] ", ev.Seq))
	sb.WriteString(fmt.Sprintf("%s#%d", ev.Prim, ev.Handle))
	if ev.Label != "" {
		sb.WriteString("(" + ev.Label + ")")
	}
	sb.WriteString(" ")
	sb.WriteString(ev.Kind.String())

	switch ev.Kind {
	case KindAlloc, KindClone, KindDrop, KindFree:
		sb.WriteString(fmt.Sprintf(" rc=%d", ev.Count))
	case KindBorrow, KindBorrowMut, KindRelease:
		sb.WriteString(fmt.Sprintf(" guards=%d", ev.Count))
	}

	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
