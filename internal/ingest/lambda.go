package ingest

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

// HandleSQSEvent processes a Lambda SQS batch. Records that may succeed on
// retry are reported as batch item failures; unprocessable ones are dropped.
func (h *Handler) HandleSQSEvent(ctx context.Context, evt events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, record := range evt.Records {
		if _, err := h.HandleBody(ctx, record.Body); err != nil {
			if Permanent(err) {
				h.logger.Error("dropping unprocessable vitals event", "error", err, "msg_id", record.MessageId)
				continue
			}
			h.logger.Error("vitals event failed", "error", err, "msg_id", record.MessageId)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}
	return resp, nil
}
