package server

import "taskdeck/internal/domain"

type CreateTaskRequest struct {
	Text     string `json:"text" example:"Buy milk"`
	Priority string `json:"priority,omitempty" enum:"high,medium,low"`
	Category string `json:"category,omitempty" enum:"work,personal,shopping,health,study"`
	DueDate  string `json:"dueDate,omitempty" example:"2026-09-01"`
}

// UpdateTaskRequest patches a task. Pointer fields distinguish "leave
// alone" from "set"; an empty category or due date clears the attribute.
type UpdateTaskRequest struct {
	Text     *string `json:"text,omitempty"`
	Priority *string `json:"priority,omitempty" enum:"high,medium,low"`
	Category *string `json:"category,omitempty"`
	DueDate  *string `json:"dueDate,omitempty"`
}

type BulkCompleteRequest struct {
	IDs []int64 `json:"ids"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type ToggleResponse struct {
	Applied bool         `json:"applied"`
	Task    *domain.Task `json:"task,omitempty"`
}

type TaskListResponse struct {
	View  domain.ViewConfig `json:"view"`
	Tasks []domain.Task     `json:"tasks"`
}
