// Package video picks the clip for each round and signs its URL.
package video

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var ErrInvalidToken = errors.New("invalid video token")

// DefaultCatalog is the built-in clip library.
var DefaultCatalog = []domain.Video{
	{ID: "video_1", Filename: "funny_cat.mp4", Duration: 10},
	{ID: "video_2", Filename: "epic_fail.mp4", Duration: 8},
	{ID: "video_3", Filename: "dance_move.mp4", Duration: 12},
	{ID: "video_4", Filename: "unexpected.mp4", Duration: 9},
	{ID: "video_5", Filename: "wholesome.mp4", Duration: 11},
	{ID: "video_6", Filename: "sports_fail.mp4", Duration: 7},
	{ID: "video_7", Filename: "animal_antics.mp4", Duration: 10},
	{ID: "video_8", Filename: "plot_twist.mp4", Duration: 15},
	{ID: "video_9", Filename: "life_hack.mp4", Duration: 13},
	{ID: "video_10", Filename: "reaction.mp4", Duration: 6},
}

type Config struct {
	BaseURL    string
	SigningKey string
	TTL        time.Duration
	Catalog    []domain.Video
}

// Picker draws uniformly from the catalog. With a signing key every URL
// carries a short-lived HS256 token naming the file.
type Picker struct {
	catalog []domain.Video
	baseURL string
	key     []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewPicker(cfg Config) *Picker {
	catalog := cfg.Catalog
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Picker{
		catalog: catalog,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     []byte(cfg.SigningKey),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (p *Picker) Pick(ctx context.Context) domain.Video {
	v := p.catalog[rand.IntN(len(p.catalog))]
	v.URL = p.plainURL(v.Filename)
	if len(p.key) == 0 || ctx.Err() != nil {
		return v
	}
	signed, err := p.SignURL(v.Filename)
	if err != nil {
		log.Error().Err(err).Str("module", "app.video").Str("file", v.Filename).Msg("sign video url")
		return v
	}
	v.URL = signed
	return v
}

func (p *Picker) plainURL(filename string) string {
	return p.baseURL + "/" + url.PathEscape(filename)
}

// SignURL returns the file URL with a token valid for the configured TTL.
func (p *Picker) SignURL(filename string) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   filename,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return p.plainURL(filename) + "?token=" + url.QueryEscape(token), nil
}

// Verify checks a token produced by SignURL for filename.
func (p *Picker) Verify(filename, token string) error {
	if len(p.key) == 0 {
		return nil
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithSubject(filename),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}
