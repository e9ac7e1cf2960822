package faculty

import (
	"strings"
	"time"

	"campus-attendance/internal/auth"
)

// Faculty is a teaching or administrative account. Every faculty member owns one timetable.
type Faculty struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	EmployeeCode string    `json:"employeeCode"`
	Abbreviation string    `json:"abbreviation"`
	DepartmentID string    `json:"department"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         auth.Role `json:"role"`
	About        string    `json:"about"`
	CreatedAt    time.Time `json:"createdAt"`

	PasswordHash string `json:"-"`
}

type CreateInput struct {
	Name         string    `json:"name" binding:"required"`
	EmployeeCode string    `json:"employeeCode" binding:"required"`
	Abbreviation string    `json:"abbreviation" binding:"required"`
	DepartmentID string    `json:"department"`
	Email        string    `json:"email" binding:"required,email"`
	Phone        string    `json:"phone"`
	Password     string    `json:"password" binding:"required,min=8"`
	Role         auth.Role `json:"role"`
	About        string    `json:"about"`
}

// Normalize trims input and lowercases the email so uniqueness is case-insensitive.
func (in *CreateInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.EmployeeCode = strings.TrimSpace(in.EmployeeCode)
	in.Abbreviation = strings.ToUpper(strings.TrimSpace(in.Abbreviation))
	in.DepartmentID = strings.TrimSpace(in.DepartmentID)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Role == "" {
		in.Role = auth.RoleFaculty
	}
}
