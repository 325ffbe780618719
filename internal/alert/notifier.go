package alert

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// Notifier delivers a newly created alert somewhere outside the store.
type Notifier interface {
	Notify(ctx context.Context, alert *Alert) error
}

// TopicNotifier pushes alerts to every device subscribed to an FCM topic.
type TopicNotifier struct {
	client *messaging.Client
	topic  string
}

func NewTopicNotifier(client *messaging.Client, topic string) *TopicNotifier {
	return &TopicNotifier{
		client: client,
		topic:  topic,
	}
}

func (n *TopicNotifier) Notify(ctx context.Context, alert *Alert) error {
	_, err := n.client.Send(ctx, topicMessage(n.topic, alert))
	return err
}

func topicMessage(topic string, alert *Alert) *messaging.Message {
	priority := "normal"
	if alert.Severity == SeverityHigh {
		priority = "high"
	}

	return &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: alert.Title,
			Body:  alert.Description,
		},
		Data: map[string]string{
			"alert_id": alert.ID.Hex(),
			"type":     alert.Type,
			"severity": alert.Severity,
			"location": alert.Location,
		},
		Android: &messaging.AndroidConfig{
			Priority: priority,
		},
	}
}
