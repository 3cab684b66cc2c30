package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client records PutObject/GetObject calls for testing.
type mockS3Client struct {
	putCalls []putCall
	objects  map[string][]byte
	getErr   error
}

type putCall struct {
	bucket string
	key    string
	body   []byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.putCalls = append(m.putCalls, putCall{bucket: *input.Bucket, key: *input.Key, body: body})
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func fixedStore(mock *mockS3Client) *Store {
	store := NewStore(mock, "test-bucket", nil)
	store.now = func() time.Time { return time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC) }
	return store
}

func TestStore_ArchiveTranscript(t *testing.T) {
	mock := newMockS3()
	store := fixedStore(mock)

	started := time.Date(2025, 7, 14, 9, 50, 0, 0, time.UTC)
	record := &TranscriptRecord{
		ConversationID: "chat-123",
		Scenario:       "vacation-planning",
		StartedAt:      started,
		Outcome:        Outcome{Stage: "closing", Qualification: "hot", Score: 78},
		Messages: []Message{
			{Role: "user", Content: "הטלפון שלי 050-1234567"},
			{Role: "assistant", Content: "תודה! נחזור אליכם בהקדם"},
		},
	}

	key, err := store.ArchiveTranscript(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "transcripts/v1/by-date/2025/07/14/chat-123.json", key)
	require.Len(t, mock.putCalls, 2)

	var stored TranscriptRecord
	require.NoError(t, json.Unmarshal(mock.putCalls[0].body, &stored))
	assert.Equal(t, recordVersion, stored.Version)
	assert.Equal(t, 2, stored.MessageCount)
	assert.Equal(t, 600, stored.DurationSeconds)
	assert.Equal(t, "הטלפון שלי [PHONE]", stored.Messages[0].Content)

	assert.Equal(t, "transcripts/v1/manifests/2025-07.jsonl", mock.putCalls[1].key)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(mock.putCalls[1].body), &entry))
	assert.Equal(t, "chat-123", entry.ConversationID)
	assert.Equal(t, 78, entry.Score)
}

func TestStore_Disabled(t *testing.T) {
	store := NewStore(nil, "", nil)
	assert.False(t, store.Enabled())

	key, err := store.ArchiveTranscript(context.Background(), &TranscriptRecord{})
	assert.NoError(t, err)
	assert.Empty(t, key)
}

func TestStore_RequiresConversationID(t *testing.T) {
	_, err := fixedStore(newMockS3()).ArchiveTranscript(context.Background(), &TranscriptRecord{})
	assert.Error(t, err)
}

func TestStore_ManifestAppend(t *testing.T) {
	mock := newMockS3()
	store := fixedStore(mock)

	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{ConversationID: "chat-1"}))
	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{ConversationID: "chat-2"}))

	lastPut := mock.putCalls[len(mock.putCalls)-1]
	lines := bytes.Split(bytes.TrimSpace(lastPut.body), []byte("\n"))
	assert.Len(t, lines, 2)
}

func TestStore_ManifestReadFailure(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("access denied")
	store := fixedStore(mock)

	err := store.AppendManifest(context.Background(), ManifestEntry{ConversationID: "chat-1"})
	assert.Error(t, err)
	assert.Empty(t, mock.putCalls)
}
