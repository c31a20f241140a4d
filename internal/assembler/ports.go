package assembler

import "context"

// CommandRunner — запуск внешней утилиты; в тестах подменяется.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}
