package models

// Enrollment links a student to a course offering. The grade stays NULL
// until a faculty member uploads one.
type Enrollment struct {
	ID         string   `db:"id" json:"id"`
	StudentID  string   `db:"student_id" json:"student_id"`
	OfferingID string   `db:"offering_id" json:"offering_id"`
	Grade      *float64 `db:"grade" json:"grade,omitempty"`
}

// GradedEnrollment is one row of a student's grade view: only enrollments
// that already carry a grade appear there.
type GradedEnrollment struct {
	ID         string  `db:"id" json:"id"`
	CourseCode string  `db:"course_code" json:"courseCode"`
	Units      int     `db:"units" json:"units"`
	Section    string  `db:"section" json:"section"`
	SchoolYear string  `db:"school_year" json:"schoolYear"`
	Term       int     `db:"term" json:"term"`
	Grade      float64 `db:"grade" json:"grade"`
}

// RosterEntry is one student line in an offering's class list.
type RosterEntry struct {
	EnrollmentID string   `db:"enrollment_id" json:"enrollmentId"`
	StudentID    string   `db:"student_id" json:"studentId"`
	StudentEmail string   `db:"student_email" json:"studentEmail"`
	Grade        *float64 `db:"grade" json:"grade,omitempty"`
}

// RosterHeader identifies the offering a roster belongs to.
type RosterHeader struct {
	OfferingID string `db:"offering_id" json:"offeringId"`
	CourseCode string `db:"course_code" json:"courseCode"`
	Section    string `db:"section" json:"section"`
	SchoolYear string `db:"school_year" json:"schoolYear"`
	Term       int    `db:"term" json:"term"`
}

// Roster is the ListStudents response: the offering header plus one entry
// per enrolled student.
type Roster struct {
	Offering RosterHeader  `json:"offering"`
	Entries  []RosterEntry `json:"enrollments"`
}
