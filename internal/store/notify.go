package store

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient toast raised by a store operation.
type Notification struct {
	Level   Level  `json:"level"`
	Op      string `json:"op"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

// Toast messages shown after successful mutations.
const (
	MsgCreated  = "Employee created successfully!"
	MsgUpdated  = "Employee updated successfully!"
	MsgArchived = "Employee status updated successfully!"
)

// Fallback messages used when a failure carries no text of its own.
const (
	MsgDashboardFailed = "Failed to load dashboard data"
	MsgListFailed      = "Failed to load employees"
	MsgCreateFailed    = "Failed to create employee"
	MsgUpdateFailed    = "Failed to update employee"
	MsgArchiveFailed   = "Failed to update employee status"
)
