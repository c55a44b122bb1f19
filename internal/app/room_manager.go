package app

import (
	crand "crypto/rand"
	"math/big"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultCodeAttempts = 10

// CodeGenerator produces candidate room codes.
type CodeGenerator func() domain.RoomCode

type RoomManagerImpl struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomCode]core.RoomHandle
	codes    CodeGenerator
	attempts int
}

func NewRoomManager(attempts int) core.RoomManager {
	return NewRoomManagerWithCodes(GenerateRoomCode, attempts)
}

func NewRoomManagerWithCodes(codes CodeGenerator, attempts int) core.RoomManager {
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}
	return &RoomManagerImpl{
		rooms:    make(map[domain.RoomCode]core.RoomHandle),
		codes:    codes,
		attempts: attempts,
	}
}

// GenerateRoomCode draws RoomCodeLength characters uniformly from RoomCodeChars.
func GenerateRoomCode() domain.RoomCode {
	code := make([]byte, domain.RoomCodeLength)
	limit := big.NewInt(int64(len(domain.RoomCodeChars)))
	for i := range code {
		n, err := crand.Int(crand.Reader, limit)
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = domain.RoomCodeChars[rand.IntN(len(domain.RoomCodeChars))]
			continue
		}
		code[i] = domain.RoomCodeChars[n.Int64()]
	}
	return domain.RoomCode(code)
}

func (f *RoomManagerImpl) Create(newRoom func(code domain.RoomCode) *domain.Room) (core.RoomHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < f.attempts; i++ {
		code := f.codes()
		if _, taken := f.rooms[code]; taken {
			log.Debug().Str("module", "app.rooms").Str("code", string(code)).Msg("room code collision")
			continue
		}
		h := core.NewRoomHandle(newRoom(code))
		f.rooms[code] = h
		log.Info().Str("module", "app.rooms").Str("code", string(code)).Int("attempt", i+1).Msg("room created")
		return h, nil
	}
	log.Warn().Str("module", "app.rooms").Int("attempts", f.attempts).Msg("room codes exhausted")
	return nil, domain.ErrCodeExhaustion
}

func (f *RoomManagerImpl) Get(code domain.RoomCode) (core.RoomHandle, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	h, ok := f.rooms[code]
	return h, ok
}

func (f *RoomManagerImpl) Install(room *domain.Room) core.RoomHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.rooms[room.Code]; ok {
		return h
	}
	h := core.NewRoomHandle(room)
	f.rooms[room.Code] = h
	log.Info().Str("module", "app.rooms").Str("code", string(room.Code)).Msg("room rehydrated")
	return h
}

func (f *RoomManagerImpl) Remove(code domain.RoomCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, code)
	log.Info().Str("module", "app.rooms").Str("code", string(code)).Msg("room removed")
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	handles := make([]core.RoomHandle, 0, len(f.rooms))
	for _, h := range f.rooms {
		handles = append(handles, h)
	}
	f.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(handles))
	for _, h := range handles {
		_ = h.View(func(r *domain.Room) error {
			out = append(out, core.RoomInfo{
				Code:        r.Code,
				State:       r.State,
				PlayerCount: len(r.Players),
				MaxPlayers:  r.Settings.MaxPlayers,
			})
			return nil
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
