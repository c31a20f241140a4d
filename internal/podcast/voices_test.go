package podcast

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	r := NewVoiceResolver(DefaultVoices())

	for _, speaker := range []string{"Marina", "Sascha", "Alex"} {
		voice, err := r.Resolve(speaker)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", speaker, err)
		}
		if voice == "" {
			t.Errorf("Resolve(%s) returned empty voice", speaker)
		}
	}

	if _, err := r.Resolve("marina"); !errors.Is(err, ErrUnknownSpeaker) {
		t.Errorf("lookup must be case-sensitive, got %v", err)
	}
	if _, err := r.Resolve(""); !errors.Is(err, ErrUnknownSpeaker) {
		t.Errorf("empty speaker: %v", err)
	}
}

func TestResolverCopiesMapping(t *testing.T) {
	m := VoiceMapping{"A": "v1"}
	r := NewVoiceResolver(m)
	m["A"] = "changed"
	m["B"] = "v2"

	if v, _ := r.Resolve("A"); v != "v1" {
		t.Errorf("resolver sees outer mutation: %s", v)
	}
	if _, err := r.Resolve("B"); err == nil {
		t.Error("resolver sees added key")
	}
}

func TestParseVoiceMapping(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    VoiceMapping
		wantErr bool
	}{
		{name: "single", raw: "Sascha=abc", want: VoiceMapping{"Sascha": "abc"}},
		{name: "spaces", raw: " Sascha = abc , Marina=def ,", want: VoiceMapping{"Sascha": "abc", "Marina": "def"}},
		{name: "missing voice", raw: "Sascha=", wantErr: true},
		{name: "no separator", raw: "Sascha", wantErr: true},
		{name: "empty", raw: " , ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVoiceMapping(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestNewScript(t *testing.T) {
	sc, err := NewScript([]Entry{
		{Speaker: " Sascha ", Text: "Hi"},
		{Speaker: "Marina", Text: "Hello "},
		{Speaker: "Sascha", Text: "Bye"},
	})
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	for i, l := range sc {
		if l.Position != i {
			t.Errorf("line %d has position %d", i, l.Position)
		}
	}
	if sc[0].Speaker != "Sascha" || sc[1].Text != "Hello" {
		t.Errorf("fields not trimmed: %+v", sc)
	}
	if got := sc.Speakers(); len(got) != 2 || got[0] != "Sascha" || got[1] != "Marina" {
		t.Errorf("Speakers() = %v", got)
	}

	if _, err := NewScript([]Entry{{Speaker: "A", Text: "  "}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty text: %v", err)
	}
	if _, err := NewScript([]Entry{{Speaker: "", Text: "x"}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty speaker: %v", err)
	}
}

func TestNewScriptLineLimit(t *testing.T) {
	entries := make([]Entry, MaxLines+1)
	for i := range entries {
		entries[i] = Entry{Speaker: "Alex", Text: "x"}
	}
	if _, err := NewScript(entries); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	sc, err := NewScript(entries[:MaxLines])
	if err != nil {
		t.Fatalf("NewScript at limit: %v", err)
	}
	if last := sc[len(sc)-1].Position; last != MaxLines-1 {
		t.Errorf("last position = %d", last)
	}
}

func TestStageErrorMessage(t *testing.T) {
	err := lineError(StageSynthesizing, ScriptLine{Position: 3, Speaker: "Alex"}, ErrService)
	if got := err.Error(); got != "podcast synthesizing: line 3 (Alex): tts service error" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrService) {
		t.Error("StageError must unwrap")
	}

	err = stageError(StagePreparing, ErrStorage)
	if got := err.Error(); got != "podcast preparing: storage error" {
		t.Errorf("Error() = %q", got)
	}
}
