package service

import "context"

// ManufacturerGateway is the boundary to a manufacturer's submission API.
// Failures surface as ErrManufacturerUnavailable and leave the case in
// submitted (not forwarded) until retried.
type ManufacturerGateway interface {
	// SubmitCase sends the case description to the manufacturer and returns
	// the task number it issued.
	SubmitCase(ctx context.Context, manufacturerID, description string) (taskNumber string, err error)

	// SendReminder nudges the manufacturer about an unanswered task.
	SendReminder(ctx context.Context, manufacturerID, taskNumber string) error
}
