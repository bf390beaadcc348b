package interfaces

import (
	"github.com/airalabs/aira/internal/models"
)

// EventSink receives live notifications as jobs progress and alerts
// fire. Implementations must not block; publishing happens on the hot
// path of the reasoning loop.
type EventSink interface {
	JobUpdated(job *models.AnalysisJob)
	StepAppended(jobID string, step models.ReasoningStep)
	AlertCreated(alert *models.Alert)
}

// NopEventSink discards all events
type NopEventSink struct{}

func (NopEventSink) JobUpdated(*models.AnalysisJob)                {}
func (NopEventSink) StepAppended(string, models.ReasoningStep)     {}
func (NopEventSink) AlertCreated(*models.Alert)                    {}
