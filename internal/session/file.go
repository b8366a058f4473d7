package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/modaudit/internal/models"
)

// rosterFile is the on-disk snapshot format used by the CLI:
//
//	session: ROOM42          # omit for "not in a session"
//	in_session: true         # optional; defaults to true when session is set
//	participants:
//	  - handle: rig-1
//	    user_id: 5F3A...
//	    name: monke
//	    actor: 1
//	    properties:          # order is preserved
//	      x1: "1"
//	      hud: "1"
type rosterFile struct {
	Session      string            `yaml:"session"`
	InSession    *bool             `yaml:"in_session"`
	Participants []participantFile `yaml:"participants"`
}

type participantFile struct {
	Handle     string    `yaml:"handle"`
	UserID     string    `yaml:"user_id"`
	Name       string    `yaml:"name"`
	Actor      *int      `yaml:"actor"`
	Properties yaml.Node `yaml:"properties"`
}

// ParseRoster decodes a roster snapshot. Property order follows the document.
// An explicit in_session flag overrides the one implied by the session name.
func ParseRoster(data []byte) (name string, inSession bool, participants []Participant, err error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", false, nil, fmt.Errorf("decoding roster: %w", err)
	}

	participants = make([]Participant, 0, len(f.Participants))
	for i, pf := range f.Participants {
		if pf.Handle == "" {
			return "", false, nil, fmt.Errorf("participant %d: handle must not be empty", i)
		}
		meta, err := decodeProperties(&pf.Properties)
		if err != nil {
			return "", false, nil, fmt.Errorf("participant %q: %w", pf.Handle, err)
		}
		actor := -1
		if pf.Actor != nil {
			actor = *pf.Actor
		}
		participants = append(participants, Participant{
			Handle:      pf.Handle,
			UserID:      pf.UserID,
			NickName:    pf.Name,
			ActorNumber: actor,
			Metadata:    meta,
		})
	}

	inSession = f.Session != ""
	if f.InSession != nil {
		inSession = *f.InSession
	}
	return f.Session, inSession, participants, nil
}

// LoadFile replaces the roster's state with the snapshot at path and returns
// the handles that are no longer present.
func (r *Roster) LoadFile(path string) (left []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}
	name, inSession, participants, err := ParseRoster(data)
	if err != nil {
		return nil, err
	}
	return r.Replace(name, inSession, participants), nil
}

// decodeProperties walks a mapping node so keys keep document order. An absent
// or null node means the metadata is unavailable.
func decodeProperties(n *yaml.Node) (models.Metadata, error) {
	switch {
	case n.Kind == 0:
		return nil, nil
	case n.Kind == yaml.ScalarNode && n.Tag == "!!null":
		return nil, nil
	case n.Kind != yaml.MappingNode:
		return nil, fmt.Errorf("properties must be a mapping, got line %d", n.Line)
	}

	meta := make(models.Metadata, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var value any
		if err := n.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("decoding property %q: %w", n.Content[i].Value, err)
		}
		meta = append(meta, models.Property{Key: n.Content[i].Value, Value: value})
	}
	return meta, nil
}
