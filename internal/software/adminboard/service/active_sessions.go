package service

import (
	"context"
	"strconv"

	"trip-tracker/internal/ports"
)

// GetActiveSessions returns a paginated list of unfinished sessions, oldest first.
func (service *adminService) GetActiveSessions(ctx context.Context, page, pageSize string) (ports.ActiveSessionsResult, error) {
	// convert page and pageSize to integers with fallback defaults
	pageInt, err := strconv.Atoi(page)
	if err != nil || pageInt < 1 {
		pageInt = 1
	}
	sizeInt, err := strconv.Atoi(pageSize)
	if err != nil || sizeInt < 1 {
		sizeInt = 10
	}
	if sizeInt > 100 {
		sizeInt = 100
	}

	res := ports.ActiveSessionsResult{
		Page:     pageInt,
		PageSize: sizeInt,
		Sessions: []ports.SessionSummary{},
	}

	var active []ports.SessionSummary
	for _, s := range service.sessions.Sessions(ctx) {
		if !s.Finished {
			active = append(active, s)
		}
	}
	res.TotalCount = len(active)

	offset := (pageInt - 1) * sizeInt
	if offset < len(active) {
		end := min(offset+sizeInt, len(active))
		res.Sessions = append(res.Sessions, active[offset:end]...)
	}
	return res, nil
}
