package assistant

import "strings"

type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockHeading   BlockKind = "heading"
	BlockBullet    BlockKind = "bullet"
)

type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

// Format splits a reply into display blocks, one per non-blank line. Lines
// starting with "* " or "- " become bullets and lines wrapped entirely in
// ** become headings. Consecutive plain lines are joined into a paragraph.
func Format(reply string) []Block {
	blocks := []Block{}
	var para []string

	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: strings.Join(para, " ")})
			para = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "- "):
			flush()
			blocks = append(blocks, Block{Kind: BlockBullet, Text: stripBold(strings.TrimSpace(line[2:]))})
		case isHeading(line):
			flush()
			blocks = append(blocks, Block{Kind: BlockHeading, Text: strings.TrimSpace(line[2 : len(line)-2])})
		default:
			para = append(para, stripBold(line))
		}
	}
	flush()
	return blocks
}

func isHeading(line string) bool {
	if len(line) <= 4 || !strings.HasPrefix(line, "**") || !strings.HasSuffix(line, "**") {
		return false
	}
	return !strings.Contains(line[2:len(line)-2], "**")
}

func stripBold(s string) string {
	return strings.ReplaceAll(s, "**", "")
}
