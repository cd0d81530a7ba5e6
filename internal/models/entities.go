package models

import "time"

// Department groups courses, sections and faculty.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Semester identifies an academic term.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	Number    int       `db:"number" json:"number"`
	Year      string    `db:"year" json:"year"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Course carries the weekly hour demand that becomes teaching units.
type Course struct {
	ID            string    `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	DepartmentID  string    `db:"department_id" json:"department_id"`
	SemesterID    string    `db:"semester_id" json:"semester_id"`
	TheoryHours   int       `db:"theory_hours" json:"theory_hours"`
	LabHours      int       `db:"lab_hours" json:"lab_hours"`
	TutorialHours int       `db:"tutorial_hours" json:"tutorial_hours"`
	Elective      bool      `db:"elective" json:"elective"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Section is a student cohort within a department and semester.
type Section struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	SemesterID   string    `db:"semester_id" json:"semester_id"`
	StudentCount int       `db:"student_count" json:"student_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RoomType distinguishes lecture rooms from laboratories.
type RoomType string

const (
	RoomTypeClassroom RoomType = "classroom"
	RoomTypeLab       RoomType = "lab"
)

// Room is a bookable teaching space.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      RoomType  `db:"type" json:"type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Features  string    `db:"features" json:"features,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Faculty is a teaching staff member with a weekly hour budget.
type Faculty struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	DepartmentID  string    `db:"department_id" json:"department_id"`
	MaxHours      int       `db:"max_hours" json:"max_hours"`
	AssignedHours int       `db:"assigned_hours" json:"assigned_hours"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
