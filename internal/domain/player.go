// Package domain contains the game entities and the rules that only need
// the entity itself. Locking and I/O live elsewhere.
package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxPlayerNameLen  = 20
	DefaultPlayerName = "Player"
)

// PlayerID is the connection identity of a seated player.
type PlayerID string

type Player struct {
	ID    PlayerID  `json:"id"`
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Hand  []Caption `json:"cards"`
}

// NewPlayer avoids raw literals in adapters and keeps construction obvious.
func NewPlayer(id PlayerID, name string) *Player {
	return &Player{ID: id, Name: NormalizeName(name), Hand: []Caption{}}
}

// NormalizeName trims the display name and cuts it to MaxPlayerNameLen runes.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPlayerName
	}
	if utf8.RuneCountInString(name) <= MaxPlayerNameLen {
		return name
	}
	runes := []rune(name)
	return strings.TrimSpace(string(runes[:MaxPlayerNameLen]))
}

// HandIndex returns the position of the caption in the player's hand or -1.
func (p *Player) HandIndex(id CaptionID) int {
	for i, c := range p.Hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Discard drops a caption from the hand. Unknown ids are ignored.
func (p *Player) Discard(id CaptionID) {
	i := p.HandIndex(id)
	if i < 0 {
		return
	}
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
}

func (p *Player) clone() Player {
	cp := *p
	cp.Hand = append([]Caption(nil), p.Hand...)
	if cp.Hand == nil {
		cp.Hand = []Caption{}
	}
	return cp
}
