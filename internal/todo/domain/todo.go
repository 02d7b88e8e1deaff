package domain

import "time"

// Todo is a short note owned by one user.
type Todo struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Content   string    `json:"todoContent" gorm:"not null"`
	UserID    string    `json:"user" gorm:"index;not null"`
	Done      bool      `json:"done" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TodoView is a todo joined with its owner's public name. UserName is empty
// when the owner has been deleted.
type TodoView struct {
	ID        string    `json:"id"`
	Content   string    `json:"todoContent"`
	Done      bool      `json:"done"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewTodoView(t *Todo, userName string) *TodoView {
	return &TodoView{
		ID:        t.ID,
		Content:   t.Content,
		Done:      t.Done,
		UserID:    t.UserID,
		UserName:  userName,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
