// Package codecdetect maps container sample-entry and header codes to codecs.
package codecdetect

import (
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/thumbnailer/pkg/ports"
)

var fourCCs = map[string]ports.Codec{
	// ISO BMFF sample entries
	"avc1": ports.CodecH264,
	"avc3": ports.CodecH264,
	"hvc1": ports.CodecHEVC,
	"hev1": ports.CodecHEVC,
	"av01": ports.CodecAV1,
	"vp08": ports.CodecVP8,
	"vp09": ports.CodecVP9,
	"jpeg": ports.CodecMJPEG,
	"mjpa": ports.CodecMJPEG,
	"mjpb": ports.CodecMJPEG,
	"mp4a": ports.CodecAAC,
	"opus": ports.CodecOpus,
	"ac-3": ports.CodecAC3,

	// IVF header codes
	"vp80": ports.CodecVP8,
	"vp90": ports.CodecVP9,
	"mjpg": ports.CodecMJPEG,
	"h264": ports.CodecH264,
	"h265": ports.CodecHEVC,
	"hevc": ports.CodecHEVC,
}

// FromFourCC returns the codec for a sample-entry or IVF fourcc.
// Matching is case-insensitive.
func FromFourCC(fourcc string) ports.Codec {
	if codec, ok := fourCCs[strings.ToLower(fourcc)]; ok {
		return codec
	}
	return ports.CodecUnknown
}

// KindFromHandler maps an ISO BMFF hdlr handler type to a stream kind.
func KindFromHandler(handler string) ports.MediaKind {
	switch handler {
	case "vide":
		return ports.KindVideo
	case "soun":
		return ports.KindAudio
	case "sbtl", "subt", "text", "clcp":
		return ports.KindSubtitle
	case "":
		return ports.KindUnknown
	default:
		return ports.KindData
	}
}

// FromTrack detects the codec of the first sample entry of trak and
// returns it with the entry's fourcc.
func FromTrack(trak *mp4.TrakBox) (ports.Codec, string) {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ports.CodecUnknown, ""
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		if child == nil {
			continue
		}
		fourcc := child.Type()
		if codec := FromFourCC(fourcc); codec != ports.CodecUnknown {
			return codec, fourcc
		}
		return ports.CodecUnknown, fourcc
	}

	return ports.CodecUnknown, ""
}
