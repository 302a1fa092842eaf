package logger

// Standard field names for consistent logging.
const (
	FieldService   = "service"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldUsername  = "username"
	FieldGroup     = "group"
	FieldChatID    = "chat_id"
)
