package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/observability"
)

// MediaStorage abstracts the blob store.
type MediaStorage interface {
	Upload(ctx context.Context, folder, name string, reader io.Reader) (string, error)
}

// MediaService validates interview recordings and stores them.
type MediaService interface {
	UploadAudio(ctx context.Context, interviewID, questionID, encoded string) (dto.MediaUploadResponse, error)
	UploadVideo(ctx context.Context, interviewID string, file *multipart.FileHeader) (dto.MediaUploadResponse, error)
}

type mediaService struct {
	storage  MediaStorage
	logger   zerolog.Logger
	maxAudio int64
	maxVideo int64
	tracer   trace.Tracer
}

// NewMediaService constructs a media service. Limits are in megabytes.
func NewMediaService(storage MediaStorage, maxAudioMB, maxVideoMB int, logger zerolog.Logger) MediaService {
	if maxAudioMB <= 0 {
		maxAudioMB = 10
	}
	if maxVideoMB <= 0 {
		maxVideoMB = 50
	}
	return &mediaService{
		storage:  storage,
		logger:   logger.With().Str("component", "media_service").Logger(),
		maxAudio: int64(maxAudioMB) * 1024 * 1024,
		maxVideo: int64(maxVideoMB) * 1024 * 1024,
		tracer:   otel.Tracer("github.com/noah-isme/interview-agent-api/internal/service/media"),
	}
}

// AudioFolder is the blob folder for an interview's answer recordings.
func AudioFolder(interviewID string) string {
	return path.Join("interviews", interviewID, "audio")
}

// VideoFolder is the blob folder for an interview's video chunks.
func VideoFolder(interviewID string) string {
	return path.Join("interviews", interviewID, "video")
}

func (s *mediaService) UploadAudio(ctx context.Context, interviewID, questionID, encoded string) (dto.MediaUploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "media.audio", trace.WithAttributes(
		attribute.String("interview.id", interviewID),
		attribute.String("question.id", questionID),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.MediaUploadLatency().Observe(time.Since(start).Seconds())
	}()

	payload, err := decodeAudio(encoded)
	if err != nil {
		observability.MediaRejected().WithLabelValues("encoding").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return dto.MediaUploadResponse{}, wrap(ErrInvalidAudio, err)
	}
	if len(payload) == 0 {
		observability.MediaRejected().WithLabelValues("empty").Inc()
		span.SetStatus(codes.Error, "empty payload")
		return dto.MediaUploadResponse{}, ErrMediaRequired
	}
	if int64(len(payload)) > s.maxAudio {
		observability.MediaRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrMediaTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.MediaUploadResponse{}, ErrMediaTooLarge
	}

	detected := mimetype.Detect(payload)
	span.SetAttributes(attribute.String("media.detected_mime", detected.String()))
	if !isAllowedAudio(detected) {
		observability.MediaRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrMediaTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.MediaUploadResponse{}, ErrMediaTypeNotAllowed
	}

	name := fmt.Sprintf("audio_%s_%s%s", interviewID, questionID, detected.Extension())
	url, err := s.storage.Upload(ctx, AudioFolder(interviewID), name, bytes.NewReader(payload))
	if err != nil {
		observability.MediaRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		s.logger.Error().Err(err).Str("interview_id", interviewID).Msg("failed to store answer audio")
		return dto.MediaUploadResponse{}, wrap(ErrMediaStorage, err)
	}

	observability.MediaUploads().WithLabelValues("audio").Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.MediaUploadResponse{
		URL:       url,
		MimeType:  baseMime(detected.String()),
		SizeBytes: int64(len(payload)),
	}, nil
}

func (s *mediaService) UploadVideo(ctx context.Context, interviewID string, file *multipart.FileHeader) (dto.MediaUploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "media.video", trace.WithAttributes(
		attribute.String("interview.id", interviewID),
		attribute.Int64("media.max_bytes", s.maxVideo),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.MediaUploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.MediaUploadResponse{}, ErrMediaRequired
	}
	if file.Size > s.maxVideo {
		observability.MediaRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrMediaTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.MediaUploadResponse{}, ErrMediaTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.MediaUploadResponse{}, validationFailure(err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxVideo+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.MediaUploadResponse{}, validationFailure(err)
	}
	if int64(buf.Len()) > s.maxVideo {
		observability.MediaRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrMediaTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.MediaUploadResponse{}, ErrMediaTooLarge
	}
	if buf.Len() == 0 {
		observability.MediaRejected().WithLabelValues("empty").Inc()
		span.SetStatus(codes.Error, "empty payload")
		return dto.MediaUploadResponse{}, ErrMediaRequired
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("media.detected_mime", detected.String()))
	if !strings.HasPrefix(detected.String(), "video/") {
		observability.MediaRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrMediaTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.MediaUploadResponse{}, ErrMediaTypeNotAllowed
	}

	name := fmt.Sprintf("chunk_%d%s", time.Now().UTC().UnixNano(), detected.Extension())
	url, err := s.storage.Upload(ctx, VideoFolder(interviewID), name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.MediaRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		s.logger.Error().Err(err).Str("interview_id", interviewID).Msg("failed to store video chunk")
		return dto.MediaUploadResponse{}, wrap(ErrMediaStorage, err)
	}

	observability.MediaUploads().WithLabelValues("video").Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.MediaUploadResponse{
		URL:       url,
		MimeType:  baseMime(detected.String()),
		SizeBytes: int64(buf.Len()),
	}, nil
}

// decodeAudio accepts plain base64 or a data URL, padded or not.
func decodeAudio(encoded string) ([]byte, error) {
	data := strings.TrimSpace(encoded)
	if strings.HasPrefix(data, "data:") {
		if idx := strings.Index(data, ","); idx >= 0 {
			data = data[idx+1:]
		}
	}

	payload, err := base64.StdEncoding.DecodeString(data)
	if err == nil {
		return payload, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

// isAllowedAudio accepts audio types plus the containers browsers record audio into.
func isAllowedAudio(detected *mimetype.MIME) bool {
	if strings.HasPrefix(detected.String(), "audio/") {
		return true
	}
	for _, allowed := range []string{"video/webm", "video/ogg", "application/ogg", "video/mp4"} {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}

func baseMime(value string) string {
	if idx := strings.Index(value, ";"); idx >= 0 {
		return strings.TrimSpace(value[:idx])
	}
	return value
}
