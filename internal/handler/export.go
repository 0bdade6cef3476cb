package handler

// export.go implements the agenda download and the push to the user's
// calendar. Downloads support ?format=json (default), csv and ics.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"date", "start", "end", "name", "type", "place_id", "notes", "available",
}

// AgendaExport is the JSON download of a schedule and its activities.
type AgendaExport struct {
	Schedule   Schedule      `json:"schedule"`
	Activities []DayActivity `json:"activities"`
}

// ExportResult reports a calendar push.
type ExportResult struct {
	Outcome string `json:"outcome"`
	Total   int    `json:"total"`
	Created int    `json:"created"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

// GetExport handles GET /schedules/{id}/export.
// Activities are ordered by date, then start time; undated ones come last.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	if s.Export == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "csv", "ics":
	default:
		requestError(w, "format must be one of json, csv, ics")
		return
	}

	sched, activities, err := s.Export.Agenda(r.Context(), userID(r), scheduleID)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}

	switch format {
	case "csv":
		writeCSV(w, sched, activities)
	case "ics":
		s.writeICS(w, r, sched, activities)
	default:
		writeJSON(w, http.StatusOK, AgendaExport{
			Schedule:   scheduleToResponse(sched),
			Activities: activitiesToResponse(activities),
		})
	}
}

// ExportToCalendar handles POST /schedules/{id}/export/calendar.
// Partial failures are reported in the body, not as an error status.
func (s *Server) ExportToCalendar(w http.ResponseWriter, r *http.Request) {
	if s.Export == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	res, err := s.Export.ExportToCalendar(r.Context(), userID(r), scheduleID)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, ExportResult{
		Outcome: string(res.Outcome),
		Total:   res.Total,
		Created: res.Created,
		Failed:  res.Failed,
		Skipped: res.Skipped,
	})
}

// writeCSV encodes the agenda as CSV. Undated activities have an empty date.
func writeCSV(w http.ResponseWriter, sched domain.Schedule, activities []domain.DayActivity) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, a := range activities {
		//nolint:errcheck
		cw.Write(activityToCSVRecord(a))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(sched, "csv"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeICS(w http.ResponseWriter, r *http.Request, sched domain.Schedule, activities []domain.DayActivity) {
	if s.ICS == nil {
		unavailable(w)
		return
	}
	var buf bytes.Buffer
	if err := s.ICS.Encode(&buf, sched, activities); err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(sched, "ics"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func activityToCSVRecord(a domain.DayActivity) []string {
	date := ""
	if a.Date != nil {
		date = a.Date.Format("2006-01-02")
	}
	return []string{
		date,
		clock(a.StartHour, a.StartMinute),
		clock(a.EndHour, a.EndMinute),
		a.Name,
		a.Type,
		a.PlaceID,
		a.Notes,
		strconv.FormatBool(a.Available),
	}
}

func clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func attachment(sched domain.Schedule, ext string) string {
	return fmt.Sprintf(`attachment; filename="agenda-%s.%s"`, sched.ID, ext)
}
