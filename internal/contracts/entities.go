package contracts

import "time"

// University is one admitting institution.
type University struct {
	ID   int64  `json:"univ_id"`
	Name string `json:"univ_name"`
}

// Department is one admitting unit within a university for one
// academic year.
type Department struct {
	ID         int64  `json:"dept_id"`
	UnivID     int64  `json:"univ_id"`
	UnivName   string `json:"univ_name,omitempty"`
	Year       int    `json:"year_id"`
	Name       string `json:"dept_name"`
	Group      string `json:"모집군"` // 가/나/다
	Capacity   int    `json:"모집인원"`
	Form       string `json:"형태,omitempty"`
	Teaching   string `json:"교직,omitempty"`
	Staged     string `json:"단계별,omitempty"`
	LegacyUID  int    `json:"legacy_uid,omitempty"`
}

// Student is one applicant.
type Student struct {
	ID     int64  `json:"student_id"`
	Name   string `json:"name"`
	Gender string `json:"gender,omitempty"`
	Year   int    `json:"year_id"`
}

// ChangeLog records one configuration edit for the audit trail.
type ChangeLog struct {
	ID        int64     `json:"log_id"`
	DeptID    int64     `json:"dept_id"`
	Table     string    `json:"table_name"`
	Field     string    `json:"field_name"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}
