package models

// Course is a catalog entry referenced by offerings.
type Course struct {
	ID    string `db:"id" json:"id"`
	Code  string `db:"code" json:"code"`
	Units int    `db:"units" json:"units"`
}

// CourseOffering is a scheduled section of a course for a school year and
// term, owned by a faculty member and capped at a fixed seat capacity.
type CourseOffering struct {
	ID         string `db:"id" json:"id"`
	CourseID   string `db:"course_id" json:"course_id"`
	FacultyID  string `db:"faculty_id" json:"faculty_id"`
	Section    string `db:"section" json:"section"`
	SchoolYear string `db:"school_year" json:"school_year"`
	Term       int    `db:"term" json:"term"`
	Capacity   int    `db:"capacity" json:"capacity"`
	IsOpen     bool   `db:"is_open" json:"is_open"`
}

// OfferingSummary is the denormalised listing row shown on the course view,
// one row per offering with its live enrollment count.
type OfferingSummary struct {
	ID            string `db:"id" json:"id"`
	CourseCode    string `db:"course_code" json:"courseCode"`
	Units         int    `db:"units" json:"units"`
	Section       string `db:"section" json:"section"`
	SchoolYear    string `db:"school_year" json:"schoolYear"`
	Term          int    `db:"term" json:"term"`
	Capacity      int    `db:"capacity" json:"capacity"`
	FacultyEmail  string `db:"faculty_email" json:"facultyEmail"`
	EnrolledCount int    `db:"enrolled_count" json:"enrolledCount"`
}

// OpenOffering extends the summary with flags computed for one student.
type OpenOffering struct {
	OfferingSummary
	IsEnrolled bool `db:"is_enrolled" json:"isEnrolled"`
	IsFull     bool `json:"isFull"`
}

// FacultyOffering is one offering owned by the calling faculty member.
type FacultyOffering struct {
	OfferingID string `db:"offering_id" json:"offeringId"`
	CourseID   string `db:"course_id" json:"courseId"`
	CourseCode string `db:"course_code" json:"courseCode"`
	Units      int    `db:"units" json:"units"`
	Section    string `db:"section" json:"section"`
	SchoolYear string `db:"school_year" json:"schoolYear"`
	Term       int    `db:"term" json:"term"`
}

// OfferingAdmission is the aggregate read used by the enrollment
// coordinator: current seat usage against the fixed capacity.
type OfferingAdmission struct {
	ID            string `db:"id"`
	Capacity      int    `db:"capacity"`
	EnrolledCount int    `db:"enrolled_count"`
}
