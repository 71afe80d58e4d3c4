package discovery

import (
	"log/slog"
	"os"
	"strings"
)

// NoDocumentation is the usage-text placeholder for scripts without any
// extractable documentation.
const NoDocumentation = "No documentation available"

// Describe extracts a short description and the full usage text from a
// script's embedded documentation: POD for perl scripts, the leading
// comment block for shell scripts. Extraction failures degrade to an empty
// summary and the fixed placeholder; they are never propagated.
func (e *Engine) Describe(path string) (summary, usage string) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.log.Debug("describe skipped", slog.String("path", path), slog.Any("err", err))
		return "", NoDocumentation
	}
	text := string(data)

	if typ, _ := scriptType(path); typ == TypeShell {
		summary, usage = shellDoc(text)
	} else {
		summary, usage = podDoc(text)
	}
	if usage == "" {
		usage = NoDocumentation
	}
	return summary, usage
}

// podDoc pulls POD out of a perl script. The summary comes from the NAME
// section, conventionally "script.pl - what it does".
func podDoc(text string) (summary, usage string) {
	var pod []string
	inPod := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, "=cut"):
			inPod = false
		case !inPod && strings.HasPrefix(trimmed, "="):
			inPod = true
			pod = append(pod, trimmed)
		case inPod:
			pod = append(pod, trimmed)
		}
	}
	if len(pod) == 0 {
		return "", ""
	}
	usage = strings.TrimSpace(strings.Join(pod, "\n"))

	for i, line := range pod {
		if !strings.HasPrefix(line, "=head1") || !strings.Contains(line, "NAME") {
			continue
		}
		for _, body := range pod[i+1:] {
			if strings.HasPrefix(body, "=") {
				break
			}
			if s := strings.TrimSpace(body); s != "" {
				// "name.pl - description" keeps just the description
				if _, after, found := strings.Cut(s, " - "); found {
					return strings.TrimSpace(after), usage
				}
				return s, usage
			}
		}
		break
	}
	return "", usage
}

// shellDoc takes the comment block at the top of a shell script, skipping
// the shebang.
func shellDoc(text string) (summary, usage string) {
	var block []string
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if i == 0 && strings.HasPrefix(trimmed, "#!") {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		block = append(block, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
	}
	for _, line := range block {
		if line != "" {
			summary = line
			break
		}
	}
	if len(block) > 0 {
		usage = strings.TrimSpace(strings.Join(block, "\n"))
	}
	return summary, usage
}
