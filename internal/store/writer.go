// internal/store/writer.go
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"activity-notifier/internal/common/logger"
	"activity-notifier/internal/common/metrics"
	"activity-notifier/internal/models"
)

// PutItemAPI is the slice of the DynamoDB client the writer uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Writer persists built notifications. One put per call, no retry:
// store failures propagate to the consumer boundary.
type Writer struct {
	client PutItemAPI
	table  string
	links  Links
	dedup  *DedupGuard // nil when the guard is disabled
	logger logger.Logger
}

func NewWriter(client PutItemAPI, table string, links Links, dedup *DedupGuard, log logger.Logger) *Writer {
	return &Writer{
		client: client,
		table:  table,
		links:  links,
		dedup:  dedup,
		logger: log,
	}
}

// Write renders the notification to its stored shape and puts it. When
// the dedup guard rejects the key the write is skipped without error; a
// guard failure is logged and the write proceeds, since a duplicate row
// is preferable to a lost notification.
func (w *Writer) Write(ctx context.Context, n *models.Notification) error {
	if w.dedup != nil {
		first, err := w.dedup.FirstDelivery(ctx, n)
		if err != nil {
			w.logger.Warn("dedup check failed, writing anyway", map[string]interface{}{
				"notificationId": n.ID,
				"error":          err.Error(),
			})
		} else if !first {
			metrics.NotificationsSuppressed.WithLabelValues(string(n.Type), "duplicate").Inc()
			w.logger.Debug("duplicate notification skipped", map[string]interface{}{
				"type":        string(n.Type),
				"recipientId": n.UserID,
			})
			return nil
		}
	}

	item, err := attributevalue.MarshalMap(renderItem(n, w.links))
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", n.ID, err)
	}

	_, err = w.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(w.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put notification %s: %w", n.ID, err)
	}

	metrics.NotificationsWritten.WithLabelValues(string(n.Type)).Inc()
	return nil
}
