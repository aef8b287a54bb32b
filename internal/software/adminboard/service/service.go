package service

import (
	"time"

	"trip-tracker/internal/ports"
)

// adminService summarises the tracking sessions of this process for operators.
type adminService struct {
	sessions ports.SessionDirectory
	history  ports.LocationHistoryRepository
	now      func() time.Time
}

// NewAdminService creates a new instance of the AdminService. history may be
// nil when fixes are not archived.
func NewAdminService(sessions ports.SessionDirectory, history ports.LocationHistoryRepository) ports.AdminService {
	return &adminService{
		sessions: sessions,
		history:  history,
		now:      func() time.Time { return time.Now().UTC() },
	}
}
