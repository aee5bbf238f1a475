package domain

// DashboardStats are the headline counts shown on the admin landing page.
type DashboardStats struct {
	Students         int `json:"students"`
	Lecturers        int `json:"lecturers"`
	StudyPrograms    int `json:"study_programs"`
	PendingProposals int `json:"pending_proposals"`
}

// OpsSnapshot summarizes gateway health counters for the admin dashboard.
type OpsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
	UpstreamErrors int64   `json:"upstream_errors"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	PickerSessions int64   `json:"picker_sessions"`
	ActiveSessions int64   `json:"active_sessions"`
	Period         string  `json:"period"`
}
