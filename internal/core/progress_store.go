package core

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Progress sidecar schema (spec §6): AudioInfo is serialized with tagged
// discriminants so the file is self-describing without a schema registry —
// __dataclass__ names the record type and __datetime__ wraps Unix seconds
// with no zone. AudioInfo carries no path fields, so no __Path__ tag is
// ever written or read.

type taggedAudioInfo struct {
	Dataclass        string           `json:"__dataclass__"`
	DurationS        *float64         `json:"duration_s,omitempty"`
	SpeechRange      *taggedRange     `json:"speech_range,omitempty"`
	RecognizedSpeech *string          `json:"recognized_speech,omitempty"`
	ParsedTimestamp  *taggedDatetime  `json:"parsed_timestamp,omitempty"`
	ExtraSpeech      []string         `json:"extra_speech,omitempty"`
}

type taggedRange struct {
	Dataclass string  `json:"__dataclass__"`
	StartS    float64 `json:"start_s"`
	DurationS float64 `json:"duration_s"`
}

type taggedDatetime struct {
	Tag     string `json:"__datetime__"`
	Seconds int64  `json:"seconds"`
}

const audioInfoDataclass = "AudioInfo"
const speechRangeDataclass = "SpeechRange"
const datetimeTag = "__datetime__"

// MarshalAudioInfo serializes ai to the tagged JSON schema the progress
// directory stores (spec §6, §8 invariant 6 round-trip).
func MarshalAudioInfo(ai *AudioInfo) ([]byte, error) {
	t := taggedAudioInfo{Dataclass: audioInfoDataclass}
	if ai.DurationS != nil {
		t.DurationS = ai.DurationS
	}
	if ai.SpeechRange != nil {
		t.SpeechRange = &taggedRange{
			Dataclass: speechRangeDataclass,
			StartS:    ai.SpeechRange.StartS,
			DurationS: ai.SpeechRange.DurationS,
		}
	}
	t.RecognizedSpeech = ai.RecognizedSpeech
	if ai.ParsedTimestamp != nil {
		t.ParsedTimestamp = &taggedDatetime{Tag: datetimeTag, Seconds: ai.ParsedTimestamp.Unix()}
	}
	t.ExtraSpeech = ai.ExtraSpeech
	return json.MarshalIndent(t, "", "  ")
}

// UnmarshalAudioInfo parses the tagged JSON schema, failing with
// ErrInvalidProgressFile when the discriminant is missing or wrong (spec
// §7 InvalidProgressFile).
func UnmarshalAudioInfo(data []byte) (*AudioInfo, error) {
	var t taggedAudioInfo
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, ErrInvalidProgressFile("malformed audioinfo JSON: %v", err)
	}
	if t.Dataclass != audioInfoDataclass {
		return nil, ErrInvalidProgressFile("unexpected __dataclass__ %q, want %q", t.Dataclass, audioInfoDataclass)
	}
	ai := &AudioInfo{
		DurationS:        t.DurationS,
		RecognizedSpeech: t.RecognizedSpeech,
		ExtraSpeech:      t.ExtraSpeech,
	}
	if t.SpeechRange != nil {
		if t.SpeechRange.Dataclass != speechRangeDataclass {
			return nil, ErrInvalidProgressFile("unexpected speech_range __dataclass__ %q, want %q", t.SpeechRange.Dataclass, speechRangeDataclass)
		}
		ai.SpeechRange = &SpeechRange{StartS: t.SpeechRange.StartS, DurationS: t.SpeechRange.DurationS}
	}
	if t.ParsedTimestamp != nil {
		if t.ParsedTimestamp.Tag != datetimeTag {
			return nil, ErrInvalidProgressFile("unexpected parsed_timestamp tag %q, want %q", t.ParsedTimestamp.Tag, datetimeTag)
		}
		ts := time.Unix(t.ParsedTimestamp.Seconds, 0).UTC()
		ai.ParsedTimestamp = &ts
	}
	return ai, nil
}

// LoadAudioInfo reads and parses path's sidecar. A missing file returns
// os.ReadFile's error unwrapped, so callers use os.IsNotExist to
// distinguish "never analyzed" from "analyzed but unreadable".
func LoadAudioInfo(path string) (*AudioInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ai, err := UnmarshalAudioInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ai, nil
}

// SaveAudioInfo writes ai's tagged JSON to path, replacing any existing
// sidecar.
func SaveAudioInfo(path string, ai *AudioInfo) error {
	data, err := MarshalAudioInfo(ai)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
