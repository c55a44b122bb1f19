// Package captions deals caption cards.
package captions

import (
	"math/rand/v2"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/google/uuid"
)

var defaultBank = []string{
	"When the Wi-Fi drops during the final boss",
	"Me pretending to understand the group project",
	"Monday morning in a nutshell",
	"That one friend who always says 'trust me'",
	"POV: you said 'hold my drink'",
	"When the recipe says 'season to taste'",
	"My last two brain cells working overtime",
	"Nobody: Absolutely nobody: Me:",
	"When you hear your name in a conversation across the room",
	"The exact moment my confidence left the chat",
	"When the teacher says 'this will be on the test'",
	"Gym day one vs gym day two",
	"When the pizza guy is early",
	"Me explaining my 3 a.m. online purchases",
	"When autocorrect ruins everything",
	"Plot twist nobody asked for",
	"When the microwave beeps at 0:01",
	"My bank account after the weekend",
	"Certified main character energy",
	"When you try to leave a conversation politely",
	"The group chat at 2 a.m.",
	"When the email says 'per my last email'",
	"Me after one cup of coffee",
	"Instructions unclear, did it anyway",
	"When you clap back and it actually works",
	"Parallel parking on the first try",
	"When the dog hears the cheese drawer",
	"Trying to act natural after tripping in public",
	"The vibes were immaculate until they weren't",
	"When the playlist shuffles to the perfect song",
	"How I think I dance vs how I actually dance",
	"When you find money in last winter's jacket",
	"That feeling when the meeting could've been an email",
	"Hold on, let me overthink this",
	"When the cat knocks it off the table on purpose",
	"Speedrunning bad decisions",
	"When the sequel is better than the original",
	"Me waiting for my code to compile",
	"Low battery, high ambition",
	"Expectation vs reality, live footage",
}

// Generator builds captions from a text bank. Ids are UUIDv4.
type Generator struct {
	bank []string
}

// NewGenerator uses bank, or the built-in texts when bank is empty.
func NewGenerator(bank ...string) *Generator {
	texts := make([]string, 0, len(bank))
	for _, t := range bank {
		if t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		texts = defaultBank
	}
	return &Generator{bank: texts}
}

// Generate returns count captions with pairwise distinct ids. Texts cycle
// through shuffled passes of the bank so repeats only happen once the bank
// is exhausted.
func (g *Generator) Generate(count int) []domain.Caption {
	if count <= 0 {
		return []domain.Caption{}
	}
	out := make([]domain.Caption, 0, count)
	var order []int
	for len(out) < count {
		if len(order) == 0 {
			order = rand.Perm(len(g.bank))
		}
		out = append(out, domain.Caption{
			ID:   domain.CaptionID(uuid.NewString()),
			Text: g.bank[order[0]],
		})
		order = order[1:]
	}
	return out
}
