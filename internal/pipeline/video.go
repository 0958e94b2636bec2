package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"t2v/internal/storage"

	"github.com/h2non/filetype"
)

var ErrEmptyVideo = errors.New("output video is empty")

const defaultMimeType = "application/octet-stream"

// Video is the output_video entry of a Result. The backend either inlines the
// encoded bytes or hands back a path on a volume both processes can read.
type Video struct {
	data         []byte
	mimeType     string
	path         string
	filenameHint string
}

func NewVideo(data []byte, mimeType string) *Video {
	return &Video{data: data, mimeType: mimeType}
}

func decodeVideo(v any) (*Video, error) {
	switch val := v.(type) {
	case *Video:
		return val, nil
	case []byte:
		return &Video{data: val}, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, ErrNoOutputVideo
		}
		return &Video{path: val}, nil
	case map[string]any:
		video := &Video{}
		video.mimeType, _ = val["mime_type"].(string)
		video.path, _ = val["path"].(string)
		video.filenameHint, _ = val["filename_hint"].(string)

		if enc, ok := val["data"].(string); ok && enc != "" {
			data, err := base64.StdEncoding.DecodeString(enc)
			if err != nil {
				return nil, fmt.Errorf("decode output_video data: %w", err)
			}
			video.data = data
		}

		if len(video.data) == 0 && video.path == "" {
			return nil, ErrNoOutputVideo
		}
		return video, nil
	default:
		return nil, fmt.Errorf("unsupported output_video type %T", v)
	}
}

// Bytes returns the encoded video, reading it from the shared path on first use.
func (v *Video) Bytes() ([]byte, error) {
	if len(v.data) > 0 || v.path == "" {
		return v.data, nil
	}
	data, err := os.ReadFile(v.path)
	if err != nil {
		return nil, fmt.Errorf("read output_video %s: %w", v.path, err)
	}
	v.data = data
	return v.data, nil
}

func (v *Video) FilenameHint() string {
	return v.filenameHint
}

// MimeType prefers the type the backend declared and sniffs the container otherwise.
func (v *Video) MimeType() string {
	if v.mimeType != "" {
		return v.mimeType
	}
	data, err := v.Bytes()
	if err != nil || len(data) == 0 {
		return defaultMimeType
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return defaultMimeType
	}
	return kind.MIME.Value
}

// Save writes the video to dst, replacing whatever is there. dst may be a
// local path or a gs://bucket/object URI.
func (v *Video) Save(ctx context.Context, dst string) error {
	data, err := v.Bytes()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrEmptyVideo
	}
	return storage.Save(ctx, dst, data, v.MimeType())
}
