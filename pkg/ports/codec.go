package ports

// Codec identifies a compression format.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP8     Codec = "vp8"
	CodecVP9     Codec = "vp9"
	CodecMJPEG   Codec = "mjpeg"
	CodecAAC     Codec = "aac"
	CodecOpus    Codec = "opus"
	CodecAC3     Codec = "ac3"
	CodecUnknown Codec = "unknown"
)
