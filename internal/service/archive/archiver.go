package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"conquest-backend/internal/domain"
	"conquest-backend/pkg/logger"
)

// TranscriptArchiver writes finished call transcripts to object storage as
// JSON documents. One document per call, keyed by start date and call id, so
// support tooling can pull a transcript without touching the live stores.
type TranscriptArchiver struct {
	client *minio.Client
	bucket string
}

// Config holds object storage connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// transcriptDocument is the archived JSON shape.
type transcriptDocument struct {
	CallID          string                `json:"call_id"`
	CallerID        string                `json:"caller_id"`
	ReceiverID      string                `json:"receiver_id"`
	Status          string                `json:"status"`
	EndReason       string                `json:"end_reason,omitempty"`
	StartedAt       time.Time             `json:"started_at"`
	ConnectedAt     *time.Time            `json:"connected_at,omitempty"`
	EndedAt         *time.Time            `json:"ended_at,omitempty"`
	DurationSeconds int                   `json:"duration_seconds"`
	Messages        []*domain.CallMessage `json:"messages"`
	ArchivedAt      time.Time             `json:"archived_at"`
}

// NewTranscriptArchiver connects to object storage and ensures the bucket
// exists.
func NewTranscriptArchiver(ctx context.Context, cfg *Config) (*TranscriptArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check transcript bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create transcript bucket: %w", err)
		}
		logger.Info("Transcript bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &TranscriptArchiver{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Archive uploads a terminal session's transcript.
func (a *TranscriptArchiver) Archive(ctx context.Context, session *domain.CallSession) error {
	doc := &transcriptDocument{
		CallID:          session.CallID.String(),
		CallerID:        session.CallerID.String(),
		ReceiverID:      session.ReceiverID.String(),
		Status:          string(session.Status),
		EndReason:       session.EndReason,
		StartedAt:       session.StartedAt,
		ConnectedAt:     session.ConnectedAt,
		EndedAt:         session.EndedAt,
		DurationSeconds: session.DurationSeconds(),
		Messages:        session.Messages,
		ArchivedAt:      time.Now().UTC(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	objectName := ObjectName(session)
	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload transcript: %w", err)
	}

	logger.Debug("Transcript archived",
		zap.String("call_id", session.CallID.String()),
		zap.String("object", objectName))

	return nil
}

// ObjectName returns the storage key for a session's transcript, partitioned
// by start date for lifecycle policies.
func ObjectName(session *domain.CallSession) string {
	return fmt.Sprintf("transcripts/%s/%s.json",
		session.StartedAt.UTC().Format("2006/01/02"),
		session.CallID)
}
