package podcast

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSpeaker = errors.New("unknown speaker")
	ErrInvalidInput   = errors.New("invalid input")
	ErrService        = errors.New("tts service error")
	ErrStorage        = errors.New("storage error")
	ErrNoClipsFound   = errors.New("no clips found")
	ErrAssembly       = errors.New("assembly error")
)

type Stage string

const (
	StageIdle         Stage = "idle"
	StagePreparing    Stage = "preparing"
	StageSynthesizing Stage = "synthesizing"
	StageAssembling   Stage = "assembling"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// StageError — ошибка конкретного этапа. Position = -1, если ошибка не привязана к реплике.
type StageError struct {
	Stage    Stage
	Position int
	Speaker  string
	Err      error
}

func (e *StageError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("podcast %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("podcast %s: line %d (%s): %v", e.Stage, e.Position, e.Speaker, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func lineError(stage Stage, line ScriptLine, err error) *StageError {
	return &StageError{Stage: stage, Position: line.Position, Speaker: line.Speaker, Err: err}
}

func stageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Position: -1, Err: err}
}

// IsSoft — прогон закончился без результата, но это не авария (нечего склеивать).
func IsSoft(err error) bool {
	return errors.Is(err, ErrNoClipsFound)
}

// FailedStage достаёт этап из цепочки ошибок.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
