package podcast

import (
	"fmt"
	"sort"
	"strings"
)

// VoiceMapping: спикер → voice_id ElevenLabs. Только чтение после старта.
type VoiceMapping map[string]string

// Премейд-голоса ElevenLabs: Alice, Aria, Bill.
func DefaultVoices() VoiceMapping {
	return VoiceMapping{
		"Marina": "Xb7hH8MSUJpSbSDYk0k2",
		"Sascha": "9BWtsMINqrJLrRacOk9x",
		"Alex":   "pqHfZKP75CvOlQylNhV4",
	}
}

// ParseVoiceMapping разбирает "Name=voiceID,Name2=voiceID2".
func ParseVoiceMapping(raw string) (VoiceMapping, error) {
	m := VoiceMapping{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, voice, ok := strings.Cut(pair, "=")
		name, voice = strings.TrimSpace(name), strings.TrimSpace(voice)
		if !ok || name == "" || voice == "" {
			return nil, fmt.Errorf("bad voice mapping entry %q", pair)
		}
		m[name] = voice
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("empty voice mapping")
	}
	return m, nil
}

type VoiceResolver struct {
	voices VoiceMapping
}

func NewVoiceResolver(voices VoiceMapping) *VoiceResolver {
	cp := make(VoiceMapping, len(voices))
	for k, v := range voices {
		cp[k] = v
	}
	return &VoiceResolver{voices: cp}
}

func (r *VoiceResolver) Resolve(speaker string) (string, error) {
	voice, ok := r.voices[speaker]
	if !ok {
		return "", fmt.Errorf("%w: no voice mapping for %q", ErrUnknownSpeaker, speaker)
	}
	return voice, nil
}

func (r *VoiceResolver) Speakers() []string {
	out := make([]string, 0, len(r.voices))
	for k := range r.voices {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
