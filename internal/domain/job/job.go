package job

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeFullTime   Type = "full-time"
	TypePartTime   Type = "part-time"
	TypeContract   Type = "contract"
	TypeInternship Type = "internship"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type Poster struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Type         Type      `json:"type"`
	Status       Status    `json:"status"`
	Salary       *string   `json:"salary,omitempty"`
	UserID       string    `json:"userId"`
	PostedBy     *Poster   `json:"postedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateRequest struct {
	Title        string  `json:"title" binding:"required,max=200"`
	Company      string  `json:"company" binding:"required,max=200"`
	Location     string  `json:"location" binding:"required,max=200"`
	Description  string  `json:"description" binding:"required,max=10000"`
	Requirements string  `json:"requirements" binding:"omitempty,max=10000"`
	Type         Type    `json:"type" binding:"required,oneof=full-time part-time contract internship"`
	Status       Status  `json:"status" binding:"omitempty,oneof=open closed"`
	Salary       *string `json:"salary" binding:"omitempty,max=100"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Type   *Type
	Status *Status
}

// New builds a Job owned by ownerID from a validated request.
func New(req CreateRequest, ownerID string) Job {
	status := req.Status
	if status == "" {
		status = StatusOpen
	}

	var salary *string
	if req.Salary != nil && *req.Salary != "" {
		s := *req.Salary
		salary = &s
	}

	return Job{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		Description:  req.Description,
		Requirements: req.Requirements,
		Type:         req.Type,
		Status:       status,
		Salary:       salary,
		UserID:       ownerID,
		CreatedAt:    time.Now().UTC(),
	}
}
