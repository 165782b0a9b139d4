package models

// NewTask carries the fields accepted when creating a task. Zero-valued
// priority and status fall back to Medium and Todo.
type NewTask struct {
	Title       string
	Description *string
	Priority    Priority
	Status      Status
	CreatedBy   int64
	AssignedTo  *int64
}

// TaskUpdate is a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *Priority
	Status      *Status
	AssignedTo  OptionalID
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.Status == nil && !u.AssignedTo.Set
}

// UserUpdate is a partial update of a user row.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string // already hashed
	Role     *Role
}

func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil && u.Role == nil
}
