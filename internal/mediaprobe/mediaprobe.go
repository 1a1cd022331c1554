// Package mediaprobe narrows the teacher's full mediainfo JSON model down
// to the one field the transfer scheduler needs: a source WAV's duration
// (spec §3 "audio_info.duration_s", grounded on
// internal/core/mediainfo.go's JSON-track-switch pattern).
package mediaprobe

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/diffusor/talkytime/internal/domainerr"
	"github.com/diffusor/talkytime/internal/toolrunner"
)

type rawMediaInfo struct {
	Media struct {
		Track []json.RawMessage `json:"track"`
	} `json:"media"`
}

type generalTrack struct {
	Type     string `json:"@type"`
	Duration string `json:"Duration"`
}

// Duration invokes mediainfo over path and returns its duration in
// seconds, parsed from the General track's Duration field.
func Duration(ctx context.Context, path string) (float64, error) {
	res, err := toolrunner.Must(ctx, "mediainfo_duration", "", map[string]string{"input": path})
	if err != nil {
		return 0, err
	}

	var raw rawMediaInfo
	if err := json.Unmarshal([]byte(res.Stdout), &raw); err != nil {
		return 0, domainerr.ErrInvalidMediaFile("%s: unparsable mediainfo output: %v", path, err)
	}
	for _, t := range raw.Media.Track {
		var gt generalTrack
		if err := json.Unmarshal(t, &gt); err != nil {
			continue
		}
		if gt.Type != "General" || gt.Duration == "" {
			continue
		}
		d, err := strconv.ParseFloat(gt.Duration, 64)
		if err != nil {
			return 0, domainerr.ErrInvalidMediaFile("%s: unparsable duration %q: %v", path, gt.Duration, err)
		}
		return d, nil
	}
	return 0, domainerr.ErrInvalidMediaFile("%s: no General track with a Duration field", path)
}
