package video

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrEmptyPrompt           = &Error{"empty_prompt", "Prompt cannot be empty"}
	ErrInvalidDuration       = &Error{"invalid_duration", "Duration must be between 1 and 60 seconds"}
	ErrUnsupportedResolution = &Error{"unsupported_resolution", "Unsupported video resolution"}
	ErrUnsupportedAspect     = &Error{"unsupported_aspect", "Unsupported aspect ratio"}
	ErrUnsupportedStyle      = &Error{"unsupported_style", "Unsupported video style"}
	ErrProviderUnavailable   = &Error{"provider_unavailable", "Video provider is currently unavailable"}
	ErrGenerationFailed      = &Error{"generation_failed", "Video generation failed"}
	ErrQuotaExceeded         = &Error{"quota_exceeded", "Video generation quota exceeded"}
)
