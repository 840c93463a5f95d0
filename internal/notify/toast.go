// Package notify collects transient toast notifications for a page and
// renders them into the page-level toast container.
package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Severity is a toast's visual category.
type Severity string

// Common severities. Any Bootstrap contextual name is accepted.
const (
	Info    Severity = "info"
	Success Severity = "success"
	Danger  Severity = "danger"
	Warning Severity = "warning"
)

// Toast is a single self-dismissing notification.
type Toast struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity" validate:"oneof=info success danger warning primary secondary light dark"`
	CreatedAt time.Time `json:"created_at"`
}

var validate = validator.New()

// NewToast builds a toast, defaulting the severity to Info.
func NewToast(message string, severity Severity) (Toast, error) {
	severity = Severity(strings.ToLower(strings.TrimSpace(string(severity))))
	if severity == "" {
		severity = Info
	}
	t := Toast{
		ID:        uuid.New(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}
	if err := validate.Struct(t); err != nil {
		return Toast{}, fmt.Errorf("notify: invalid toast: %w", err)
	}
	return t, nil
}

// Notifier receives toasts.
type Notifier interface {
	Show(message string, severity Severity)
}

// Container is the single page-level element holding toasts.
type Container struct {
	ID     string
	Class  string
	toasts []Toast
}

// Default container attributes.
const (
	ContainerID    = "toast-container"
	ContainerClass = "toast-container position-fixed top-0 end-0 p-3"
)

// Board owns a page's toast container. The zero value is ready to use
// and safe for concurrent callers.
type Board struct {
	mu        sync.Mutex
	container *Container
}

// Show appends a toast, creating the container on first use. Invalid
// severities fall back to Info rather than dropping the message.
func (b *Board) Show(message string, severity Severity) {
	t, err := NewToast(message, severity)
	if err != nil {
		t, _ = NewToast(message, Info)
	}
	b.Add(t)
}

// Add appends an already built toast.
func (b *Board) Add(t Toast) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.ensureContainer()
	c.toasts = append(c.toasts, t)
}

func (b *Board) ensureContainer() *Container {
	if b.container == nil {
		b.container = &Container{ID: ContainerID, Class: ContainerClass}
	}
	return b.container
}

// HasContainer reports whether any toast has been shown yet.
func (b *Board) HasContainer() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.container != nil
}

// Toasts returns a copy of the shown toasts in order.
func (b *Board) Toasts() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.container == nil {
		return nil
	}
	return append([]Toast(nil), b.container.toasts...)
}
