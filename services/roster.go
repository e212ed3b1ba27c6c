package services

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
)

// Roster is the YAML document accepted by `rollcall member import`:
//
//	members:
//	  - name: Ann
//	    discord_name: ann
//	    is_admin: true
type Roster struct {
	Members []models.RegisterMemberRequest `yaml:"members"`
}

// ParseRoster decodes a roster document. Unknown fields are rejected so a
// typo in a key does not silently drop data.
func ParseRoster(r io.Reader) ([]models.RegisterMemberRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var roster Roster
	if err := dec.Decode(&roster); err != nil {
		if err == io.EOF {
			return []models.RegisterMemberRequest{}, nil
		}
		return nil, fmt.Errorf("%w: invalid roster: %v", pkg.ErrBadRequest, err)
	}
	if roster.Members == nil {
		return []models.RegisterMemberRequest{}, nil
	}
	return roster.Members, nil
}
