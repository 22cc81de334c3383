package entity

// Tipos de tarea Celery. Deben coincidir exactamente con los nombres
// registrados en el worker externo.
const (
	TaskSyncDocuments    = "sii.sync_documents"
	TaskSyncF29          = "sii.sync_f29"
	TaskSyncCalendar     = "calendar.sync_company_calendar"
	TaskLoadMemories     = "memory.load_company_memories"
	TaskGenerateF29Draft = "form29.generate_draft_for_company"
)

// Estados terminales y transitorios de una tarea Celery.
const (
	TaskStatusPending = "pending"
	TaskStatusStarted = "started"
	TaskStatusSuccess = "success"
	TaskStatusFailure = "failure"
)

// TaskTerminal informa si un estado es terminal (success o failure).
func TaskTerminal(status string) bool {
	return status == TaskStatusSuccess || status == TaskStatusFailure
}
