package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"quiz-result-service/internal/domain"
)

// ResultSubmittedEvent is the message body published for each stored result.
type ResultSubmittedEvent struct {
	EventID          string    `json:"eventId"`
	Type             string    `json:"type"`
	ResultID         int64     `json:"resultId"`
	UserID           int64     `json:"userId"`
	QuizID           int64     `json:"quizId"`
	QuizTitle        string    `json:"quizTitle"`
	CorrectCount     int       `json:"correctCount"`
	TotalQuestions   int       `json:"totalQuestions"`
	SuccessRate      float64   `json:"successRate"`
	TotalPoints      int       `json:"totalPoints"`
	MaxPoints        int       `json:"maxPoints"`
	TimeSpentSeconds int64     `json:"timeSpentSeconds"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

const eventTypeResultSubmitted = "result.submitted"

// NewResultSubmittedEvent builds the event payload for result.
func NewResultSubmittedEvent(result domain.GradedResult) ResultSubmittedEvent {
	return ResultSubmittedEvent{
		EventID:          uuid.NewString(),
		Type:             eventTypeResultSubmitted,
		ResultID:         result.ID,
		UserID:           result.UserID,
		QuizID:           result.QuizID,
		QuizTitle:        result.QuizTitle,
		CorrectCount:     result.CorrectCount,
		TotalQuestions:   result.TotalQuestions,
		SuccessRate:      result.SuccessRate,
		TotalPoints:      result.TotalPoints,
		MaxPoints:        result.MaxPoints,
		TimeSpentSeconds: int64(result.TimeSpent / time.Second),
		SubmittedAt:      result.SubmittedAt,
	}
}

// Publisher sends result events to a durable queue.
type Publisher struct {
	conn  *amqp.Connection
	queue string

	mu      sync.Mutex
	channel *amqp.Channel
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{conn: conn, channel: channel, queue: queue}, nil
}

// NotifyResult publishes a result.submitted event.
func (p *Publisher) NotifyResult(ctx context.Context, result domain.GradedResult) error {
	event := NewResultSubmittedEvent(result)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Type:         event.Type,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
