package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appconfig "github.com/wolfman30/travel-ai-concierge/internal/config"
	"github.com/wolfman30/travel-ai-concierge/internal/events"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

type recordingNotifier struct {
	mu    sync.Mutex
	leads []events.LeadEscalatedV1
	err   error
}

func (n *recordingNotifier) NotifyLeadEscalated(_ context.Context, evt events.LeadEscalatedV1) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.leads = append(n.leads, evt)
	return nil
}

type memoryDedupe struct {
	seen map[string]bool
}

func (m *memoryDedupe) Seen(_ context.Context, consumer string, env events.Envelope) (bool, error) {
	return m.seen[consumer+"/"+env.EventID.String()], nil
}

func (m *memoryDedupe) Record(_ context.Context, consumer string, env events.Envelope) (bool, error) {
	key := consumer + "/" + env.EventID.String()
	fresh := !m.seen[key]
	m.seen[key] = true
	return fresh, nil
}

func envelopeBody(t *testing.T, evt events.CanonicalEvent) string {
	t.Helper()
	env, err := events.NewEnvelope("chat:1", "", evt)
	require.NoError(t, err)
	body, err := json.Marshal(env)
	require.NoError(t, err)
	return string(body)
}

func TestHandleNotifiesOncePerEvent(t *testing.T) {
	notifier := &recordingNotifier{}
	c := &consumer{notifier: notifier, dedupe: &memoryDedupe{seen: map[string]bool{}}, logger: logging.New("error")}

	body := envelopeBody(t, events.LeadEscalatedV1{ConversationID: "chat:1", Qualification: "hot", Score: 70})
	evt := awsevents.SQSEvent{Records: []awsevents.SQSMessage{
		{MessageId: "m1", Body: body},
		{MessageId: "m2", Body: body},
	}}

	resp, err := c.handle(context.Background(), evt)
	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)
	require.Len(t, notifier.leads, 1)
	assert.Equal(t, "chat:1", notifier.leads[0].ConversationID)
}

func TestHandleReportsFailedRecords(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("sendgrid down")}
	c := &consumer{notifier: notifier, logger: logging.New("error")}

	evt := awsevents.SQSEvent{Records: []awsevents.SQSMessage{
		{MessageId: "bad", Body: envelopeBody(t, events.LeadEscalatedV1{ConversationID: "chat:2"})},
		{MessageId: "ended", Body: envelopeBody(t, events.ConversationEndedV1{ConversationID: "chat:2"})},
		{MessageId: "junk", Body: "{not json"},
	}}

	resp, err := c.handle(context.Background(), evt)
	require.NoError(t, err)
	require.Len(t, resp.BatchItemFailures, 1)
	assert.Equal(t, "bad", resp.BatchItemFailures[0].ItemIdentifier)
}

func TestNewConsumerRequiresRecipients(t *testing.T) {
	_, err := newConsumer(context.Background(), &appconfig.Config{}, logging.New("error"))
	assert.Error(t, err)

	c, err := newConsumer(context.Background(), &appconfig.Config{SalesNotifyEmail: "desk@example.com"}, logging.New("error"))
	require.NoError(t, err)
	assert.Nil(t, c.dedupe)

	_, err = newConsumer(context.Background(), &appconfig.Config{
		SalesNotifyPhone: "+972501111111",
		TwilioAccountSID: "AC1",
	}, logging.New("error"))
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, splitList(" a@example.com, ,b@example.com "))
	assert.Nil(t, splitList(""))
}
