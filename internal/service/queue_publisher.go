// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
    "context"
    "encoding/json"
    "log"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/mission-dashboard/internal/queue"
)

// Publisher sends mission events to the mission.activity queue.  A
// disabled Publisher drops events silently.
type Publisher struct {
    URL     string
    Enabled bool
    Timeout time.Duration

    inflight sync.WaitGroup
}

// New returns a Publisher for the broker at url.
func New(url string, enabled bool) *Publisher {
    return &Publisher{URL: url, Enabled: enabled, Timeout: 3 * time.Second}
}

// Notify publishes ev in the background and only logs failures.  The
// mutation that produced ev has already succeeded, so the caller does not
// wait for the broker.
func (p *Publisher) Notify(ctx context.Context, ev q.MissionEvent) {
    if p == nil || !p.Enabled {
        return
    }
    // The request context ends with the HTTP response; the publish gets its
    // own deadline.
    pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.Timeout)
    p.inflight.Add(1)
    go func() {
        defer p.inflight.Done()
        defer cancel()
        _ = p.PublishMissionEvent(pctx, ev)
    }()
}

// Wait blocks until every event handed to Notify has been published or
// has failed.
func (p *Publisher) Wait() {
    if p != nil {
        p.inflight.Wait()
    }
}

// PublishMissionEvent publishes a MissionEvent to the "mission.activity"
// queue. The function attempts to be robust and to never panic; any error
// is logged and returned so the caller can choose to ignore it. Messages
// are marked as persistent.
func (p *Publisher) PublishMissionEvent(ctx context.Context, event q.MissionEvent) error {
    conn, err := amqp.DialConfig(p.URL, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(p.Timeout),
    })
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.ActivityQueueName, // name
        true,                // durable
        false,               // autoDelete
        false,               // exclusive
        false,               // noWait
        nil,                 // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    event.EventID,
        Type:         string(event.Type),
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                  // default exchange
        q.ActivityQueueName, // routing key = queue name
        false,               // mandatory
        false,               // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }

    return nil
}
