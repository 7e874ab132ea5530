package entity

import "time"

// ScanStat tracks scan traffic per device/location pair so the ops surface
// can see which scanners are actually in use.
type ScanStat struct {
	DeviceInfo   string    `json:"device_info" bson:"device_info"`
	ScanLocation string    `json:"scan_location" bson:"scan_location"`
	LastScan     time.Time `json:"last_scan" bson:"last_scan"`
	ScanCount    int64     `json:"scan_count" bson:"scan_count"`
}

// AttendanceSummary is the stats surface consumed by the dashboard. Note
// AttendedDays uses the wider counting rule that includes left days, unlike
// the per-student attendance count.
type AttendanceSummary struct {
	TotalStudents   int `json:"total_students"`
	ActiveStudents  int `json:"active_students"`
	PresentToday    int `json:"present_today"`
	ClosedToday     int `json:"closed_today"`
	AttendedDays    int `json:"attended_days"`
	RecordedDays    int `json:"recorded_days"`
	OpenRecordTotal int `json:"open_record_total"`
}
