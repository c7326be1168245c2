package model

import "time"

type UserWithTasks struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
	IsDemo         bool      `json:"isDemo"`
	Tasks          []Task    `json:"tasks"`
	TaskCount      int       `json:"taskCount"`
	CompletedTasks int       `json:"completedTasks"`
}

type AdminStats struct {
	TotalUsers           int `json:"totalUsers"`
	TotalRegisteredUsers int `json:"totalRegisteredUsers"`
	TotalDemoUsers       int `json:"totalDemoUsers"`
	TotalTasks           int `json:"totalTasks"`
	CompletedTasks       int `json:"completedTasks"`
	PendingTasks         int `json:"pendingTasks"`
}
