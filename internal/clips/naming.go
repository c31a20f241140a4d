package clips

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Vovarama1992/podcast_maker/internal/podcast"
)

// Имя клипа: <позиция, 5 цифр с нулями>_<спикер>.mp3, например 00002_Sascha.mp3.
// Лексикографический порядок имён == порядок сценария; на этом держится склейка.
const (
	Ext           = ".mp3"
	positionWidth = 5
	MaxLines      = podcast.MaxLines
	partSuffix    = ".part"
)

func FileName(position int, speaker string) string {
	return fmt.Sprintf("%0*d_%s%s", positionWidth, position, sanitizeSpeaker(speaker), Ext)
}

// ParseFileName — обратная операция. ok=false для чужих файлов.
func ParseFileName(name string) (position int, speaker string, ok bool) {
	base, found := strings.CutSuffix(name, Ext)
	if !found {
		return 0, "", false
	}
	num, speaker, found := strings.Cut(base, "_")
	if !found || len(num) != positionWidth || speaker == "" {
		return 0, "", false
	}
	position, err := strconv.Atoi(num)
	if err != nil || position < 0 {
		return 0, "", false
	}
	return position, speaker, true
}

func sanitizeSpeaker(speaker string) string {
	var b strings.Builder
	for _, r := range speaker {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "speaker"
	}
	return b.String()
}

// List — клипы каталога по имени, т.е. в порядке сценария.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, _, ok := ParseFileName(e.Name()); !ok {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}
