package dto

// CreateReportPayload queues a vacancy gap report.
type CreateReportPayload struct {
	Format string `json:"format" validate:"required,oneof=CSV PDF csv pdf"`
}
