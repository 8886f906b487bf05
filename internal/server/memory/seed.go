package memory

import (
	"github.com/goccy/go-yaml"

	"github.com/agentstation/tasksync/pkg/errors"
)

// Seed is the initial data of a development backend.
type Seed struct {
	Users []SeedUser `yaml:"users"`
}

// SeedUser is one account in a seed file.
type SeedUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Token string `yaml:"token"`
}

// DefaultSeed has two users so sharing can be tried out right away.
var DefaultSeed = Seed{Users: []SeedUser{
	{ID: "alice", Name: "Alice", Email: "alice@example.com", Token: "alice-token"},
	{ID: "bob", Name: "Bob", Email: "bob@example.com", Token: "bob-token"},
}}

// ParseSeed decodes a YAML seed file.
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, errors.WrapParse("yaml", "seed", err)
	}
	return s, nil
}

// Load registers the seed's users.
func (db *DB) Load(s Seed) error {
	for _, u := range s.Users {
		if _, err := db.AddUser(u.ID, u.Name, u.Email, u.Token); err != nil {
			return errors.WrapResource("seed", "user", u.ID, err)
		}
	}
	return nil
}
