package models

// Lane is the handling path an uploaded asset is routed through.
type Lane string

const (
	LaneImageOCR         Lane = "image_ocr"
	LaneTabularDirect    Lane = "tabular_direct"
	LaneImagePassthrough Lane = "image_passthrough"
	LaneAudioPassthrough Lane = "audio_passthrough"
	LaneUnsupported      Lane = "unsupported"
)

// IsPassthrough reports whether the lane returns the stored file as-is.
func (l Lane) IsPassthrough() bool {
	return l == LaneImagePassthrough || l == LaneAudioPassthrough
}
