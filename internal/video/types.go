package video

import (
	"slices"
	"strings"

	"t2v/internal/pipeline"
)

const (
	MaxDurationSeconds = 60
	// DefaultHeight is used when only an aspect ratio is given.
	DefaultHeight = 512
)

type Request struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt,omitempty"`
	Duration       int     `json:"duration"`
	Resolution     string  `json:"resolution"`
	Aspect         string  `json:"aspect,omitempty"`
	Style          string  `json:"style,omitempty"`
	Options        Options `json:"options,omitempty"`
	UserID         string  `json:"userId,omitempty"`
	Tier           string  `json:"tier,omitempty"`
}

type Options struct {
	FPS      int     `json:"fps,omitempty"`
	Seed     int64   `json:"seed,omitempty"`
	CFGScale float64 `json:"cfgScale,omitempty"`
	Steps    int     `json:"steps,omitempty"`
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

type Aspect string

const (
	Aspect16_9 Aspect = "16:9"
	Aspect9_16 Aspect = "9:16"
	Aspect1_1  Aspect = "1:1"
	Aspect4_3  Aspect = "4:3"
	Aspect21_9 Aspect = "21:9"
)

type Style string

const (
	StyleRealistic Style = "realistic"
	StyleAnime     Style = "anime"
	StyleCartoon   Style = "cartoon"
	StyleArtistic  Style = "artistic"
	StyleCinematic Style = "cinematic"
	StyleMinimal   Style = "minimal"
)

var (
	SupportedResolutions = []string{
		"1920x1080", "1080x1920",
		"1280x720", "720x1280",
		"1024x1024", "512x512", "256x256",
	}
	SupportedAspects = []Aspect{Aspect16_9, Aspect9_16, Aspect1_1, Aspect4_3, Aspect21_9}
	SupportedStyles  = []Style{StyleRealistic, StyleAnime, StyleCartoon, StyleArtistic, StyleCinematic, StyleMinimal}
)

func IsSupportedResolution(resolution string) bool {
	return slices.Contains(SupportedResolutions, resolution)
}

func IsSupportedAspect(aspect Aspect) bool {
	return slices.Contains(SupportedAspects, aspect)
}

func IsSupportedStyle(style Style) bool {
	return slices.Contains(SupportedStyles, style)
}

func ValidateRequest(req Request) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if req.Duration <= 0 || req.Duration > MaxDurationSeconds {
		return ErrInvalidDuration
	}
	// an aspect alone picks the frame shape at DefaultHeight
	if !(req.Resolution == "" && req.Aspect != "") && !IsSupportedResolution(req.Resolution) {
		return ErrUnsupportedResolution
	}
	if req.Aspect != "" && !IsSupportedAspect(Aspect(req.Aspect)) {
		return ErrUnsupportedAspect
	}
	if req.Style != "" && !IsSupportedStyle(Style(req.Style)) {
		return ErrUnsupportedStyle
	}
	return nil
}

// Input builds the pipeline request. Only "text" is always present; every
// other key appears only when the caller set it.
func (r Request) Input() pipeline.Input {
	in := pipeline.Input{pipeline.InputText: r.Prompt}
	if r.NegativePrompt != "" {
		in["negative_prompt"] = r.NegativePrompt
	}
	if r.Duration > 0 {
		in["duration"] = r.Duration
	}
	if w, h, ok := ResolutionToDimensions(r.Resolution); ok {
		in["width"] = w
		in["height"] = h
	} else if r.Aspect != "" {
		in["width"] = AspectToDimensions(Aspect(r.Aspect), DefaultHeight)
		in["height"] = DefaultHeight
	}
	if r.Aspect != "" {
		in["aspect"] = r.Aspect
	}
	if r.Style != "" {
		in["style"] = r.Style
	}
	if r.Options.FPS > 0 {
		in["fps"] = r.Options.FPS
	}
	if r.Options.Seed != 0 {
		in["seed"] = r.Options.Seed
	}
	if r.Options.CFGScale > 0 {
		in["cfg_scale"] = r.Options.CFGScale
	}
	if r.Options.Steps > 0 {
		in["steps"] = r.Options.Steps
	}
	return in
}

func ResolutionToDimensions(resolution string) (width, height int, ok bool) {
	switch resolution {
	case "1920x1080":
		return 1920, 1080, true
	case "1080x1920":
		return 1080, 1920, true
	case "1280x720":
		return 1280, 720, true
	case "720x1280":
		return 720, 1280, true
	case "1024x1024":
		return 1024, 1024, true
	case "512x512":
		return 512, 512, true
	case "256x256":
		return 256, 256, true
	default:
		return 0, 0, false
	}
}

// AspectToDimensions returns the width for height at aspect. Unknown aspects are treated as 16:9.
func AspectToDimensions(aspect Aspect, height int) (width int) {
	switch aspect {
	case Aspect9_16:
		return height * 9 / 16
	case Aspect1_1:
		return height
	case Aspect4_3:
		return height * 4 / 3
	case Aspect21_9:
		return height * 21 / 9
	default:
		return height * 16 / 9
	}
}
