package podcast

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ScriptLine — одна реплика сценария. Position — индекс в исходном сценарии,
// единственный ключ порядка на всём пути до склейки.
type ScriptLine struct {
	Position int    `json:"position"`
	Speaker  string `json:"speaker"`
	Text     string `json:"text"`
}

type Script []ScriptLine

// Entry — сырая реплика от внешнего генератора сценария.
type Entry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// MaxLines — потолок реплик: позиция кодируется в имени клипа пятью цифрами.
const MaxLines = 100000

// NewScript проставляет позиции и валидирует реплики.
func NewScript(entries []Entry) (Script, error) {
	if len(entries) > MaxLines {
		return nil, fmt.Errorf("%w: %d lines, max %d", ErrInvalidInput, len(entries), MaxLines)
	}
	script := make(Script, 0, len(entries))
	for i, e := range entries {
		line := ScriptLine{
			Position: i,
			Speaker:  strings.TrimSpace(e.Speaker),
			Text:     strings.TrimSpace(e.Text),
		}
		if err := line.Validate(); err != nil {
			return nil, err
		}
		script = append(script, line)
	}
	return script, nil
}

func (l ScriptLine) Validate() error {
	if l.Position < 0 {
		return fmt.Errorf("%w: negative position %d", ErrInvalidInput, l.Position)
	}
	if l.Speaker == "" {
		return fmt.Errorf("%w: empty speaker at position %d", ErrInvalidInput, l.Position)
	}
	if l.Text == "" {
		return fmt.Errorf("%w: empty text at position %d (%s)", ErrInvalidInput, l.Position, l.Speaker)
	}
	return nil
}

// Speakers — уникальные спикеры в порядке первого появления.
func (s Script) Speakers() []string {
	seen := make(map[string]struct{}, len(s))
	var out []string
	for _, l := range s {
		if _, ok := seen[l.Speaker]; ok {
			continue
		}
		seen[l.Speaker] = struct{}{}
		out = append(out, l.Speaker)
	}
	return out
}

// SynthesizedClip принадлежит задаче синтеза, пока не отдан в ClipStore.
type SynthesizedClip struct {
	Position int
	Speaker  string
	Audio    io.ReadCloser
}

type Result struct {
	Clips    []string
	Output   string
	Duration time.Duration
}
