package models

import (
	"time"
)

type User struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Email               string    `json:"email" db:"email"`
	Password            string    `json:"-" db:"password"`
	Role                Role      `json:"role" db:"role"`
	ResetPasswordToken  *string   `json:"-" db:"reset_password_token"`
	ResetPasswordExpire *int64    `json:"-" db:"reset_password_expire"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
}

// PublicUser is the view of a user returned by auth endpoints.
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	role := u.Role
	if role == "" {
		role = RoleUser
	}
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: role}
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is what the assignment picker needs.
type UserSummary struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

type Task struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Priority     Priority  `json:"priority" db:"priority"`
	Status       Status    `json:"status" db:"status"`
	CreatedBy    int64     `json:"createdBy" db:"created_by"`
	AssignedTo   *int64    `json:"assignedTo,omitempty" db:"assigned_to"`
	CreatorName  string    `json:"creatorName" db:"creator_name"`
	AssigneeName *string   `json:"assigneeName,omitempty" db:"assignee_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// IsParticipant reports whether userID created the task or is assigned to it.
func (t *Task) IsParticipant(userID int64) bool {
	return t.CreatedBy == userID || (t.AssignedTo != nil && *t.AssignedTo == userID)
}

type Comment struct {
	ID        int64     `json:"id" db:"id"`
	TaskID    int64     `json:"taskId" db:"task_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	UserName  string    `json:"userName" db:"user_name"`
	Content   string    `json:"content" db:"content"`
	TaskTitle *string   `json:"taskTitle,omitempty" db:"task_title"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Activity is append-only; there is no update or delete path.
type Activity struct {
	ID          int64     `json:"id" db:"id"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	UserID      int64     `json:"userId" db:"user_id"`
	UserName    string    `json:"userName" db:"user_name"`
	TaskID      *int64    `json:"taskId,omitempty" db:"task_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

const (
	ActivityTaskCreated  = "task_created"
	ActivityTaskUpdated  = "task_updated"
	ActivityTaskDeleted  = "task_deleted"
	ActivityCommentAdded = "comment_added"
)

type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalTasks    int `json:"totalTasks"`
	TotalComments int `json:"totalComments"`
}
