package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service stores interview media in Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload stores the object under the configured root folder joined with folder
// and returns its secure URL. Audio and video are stored as video resources.
func (s *Service) Upload(ctx context.Context, folder, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       joinFolder(s.folder, folder),
		PublicID:     BuildPublicID(name),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected asset: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Str("folder", params.Folder).Msg("media uploaded to cloudinary")

	return result.SecureURL, nil
}

func joinFolder(root, folder string) string {
	return strings.Trim(path.Join(strings.Trim(root, "/"), strings.Trim(folder, "/")), "/")
}

// BuildPublicID strips the extension and replaces characters Cloudinary does not accept.
// Names that reduce to nothing get a timestamped placeholder.
func BuildPublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().UnixNano())
	}

	return base
}
