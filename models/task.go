package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return TaskStatus(s), true
	}
	return "", false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return TaskPriority(s), true
	}
	return "", false
}

type Task struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	ProjectID    primitive.ObjectID `bson:"projectId" json:"projectId"`
	AssignedToID primitive.ObjectID `bson:"assignedTo" json:"assignedTo"`
	Status       TaskStatus         `bson:"status" json:"status"`
	Priority     TaskPriority       `bson:"priority" json:"priority"`
	Deadline     *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
