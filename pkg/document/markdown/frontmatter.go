package markdown

import (
	"bytes"
	stderrors "errors"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrFrontmatterInvalid = stderrors.New("invalid frontmatter")

// Frontmatter is the YAML metadata block a captured markdown file may open
// with, triple-dash fenced.
type Frontmatter struct {
	Title  string   `yaml:"title,omitempty"`
	Source string   `yaml:"source,omitempty"`
	Tags   []string `yaml:"tags,omitempty"`

	raw string // using string to be able to compare using ==
}

func (f *Frontmatter) Raw() string {
	if f == nil {
		return ""
	}
	return f.raw
}

// Marshal returns the frontmatter including the triple-dashed fences, or
// nil for a nil or empty frontmatter.
func (f *Frontmatter) Marshal() ([]byte, error) {
	if f == nil || (f.Title == "" && f.Source == "" && len(f.Tags) == 0) {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(f); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	return append(append([]byte("---\n"), buf.Bytes()...), []byte("---\n")...), nil
}

// splitSource separates an optional leading frontmatter from the markdown
// body. The returned raw slice includes the fence lines.
func splitSource(src []byte) (raw, content []byte) {
	if !bytes.HasPrefix(src, []byte("---\n")) && !bytes.HasPrefix(src, []byte("---\r\n")) {
		return nil, src
	}

	rest := src[bytes.IndexByte(src, '\n')+1:]
	for off := 0; off < len(rest); {
		lineEnd := bytes.IndexByte(rest[off:], '\n')
		if lineEnd < 0 {
			break
		}
		line := bytes.TrimSpace(rest[off : off+lineEnd])
		if bytes.Equal(line, []byte("---")) {
			fenceEnd := off + lineEnd + 1
			return src[:len(src)-len(rest)+fenceEnd], rest[fenceEnd:]
		}
		off += lineEnd + 1
	}

	return nil, src
}

func parseFrontmatter(raw []byte) (*Frontmatter, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	lines := bytes.Split(raw, []byte{'\n'})
	for len(lines) > 0 && len(bytes.TrimSpace(lines[len(lines)-1])) == 0 {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 2 || !bytes.Equal(bytes.TrimSpace(lines[0]), bytes.TrimSpace(lines[len(lines)-1])) {
		return nil, errors.WithStack(ErrFrontmatterInvalid)
	}

	body := bytes.Join(lines[1:len(lines)-1], []byte{'\n'})

	var f Frontmatter
	if err := yaml.Unmarshal(body, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse frontmatter content")
	}
	f.raw = string(body)

	return &f, nil
}
