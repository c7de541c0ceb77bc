// Package srd wraps the external D&D 5e SRD API. The engine uses it to
// hydrate enemy templates that reference a monster entry but carry no stats
// of their own.
package srd

//go:generate mockgen -destination=mock/mock_client.go -package=mocksrd -source=client.go

import (
	"net/http"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"

	"github.com/fvicente/mazmorra/internal/errors"
)

// MonsterAttack is one attack option from a monster's stat block.
type MonsterAttack struct {
	Name        string
	AttackBonus int
	DamageDice  string // e.g. "1d6+2"
}

// MonsterStats is the subset of a monster entry the engine cares about.
type MonsterStats struct {
	Key     string
	Name    string
	HP      int
	AC      int
	Attacks []MonsterAttack
}

// Client looks up monster stat blocks.
type Client interface {
	MonsterStats(key string) (*MonsterStats, error)
}

type client struct {
	api dnd5e.Interface
}

// Config holds configuration for the SRD client.
type Config struct {
	HTTPClient *http.Client
}

// New creates an SRD client backed by the public 5e API.
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("cfg is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	api, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{Client: httpClient})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create 5e API client")
	}

	return &client{api: api}, nil
}

func (c *client) MonsterStats(key string) (*MonsterStats, error) {
	if key == "" {
		return nil, errors.InvalidArgument("monster key is required")
	}

	monster, err := c.api.GetMonster(key)
	if err != nil {
		return nil, errors.Unavailablef("failed to fetch monster %q: %v", key, err)
	}
	if monster == nil {
		return nil, errors.NotFoundf("monster %q not found", key)
	}

	stats := &MonsterStats{
		Key:  monster.Key,
		Name: monster.Name,
		HP:   monster.HitPoints,
		AC:   monster.ArmorClass,
	}
	for _, ma := range monster.MonsterActions {
		if ma == nil {
			continue
		}
		attack := MonsterAttack{Name: ma.Name, AttackBonus: ma.AttackBonus}
		if len(ma.Damage) > 0 && ma.Damage[0] != nil {
			attack.DamageDice = ma.Damage[0].DamageDice
		}
		stats.Attacks = append(stats.Attacks, attack)
	}

	return stats, nil
}
