package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/complog/pkg/registry"
	"gopkg.in/yaml.v3"
)

// DefaultReplaySession is the session ID used when a script names none.
const DefaultReplaySession = "replay"

// Script is a recorded sequence of logger operations.
type Script struct {
	Session string       `yaml:"session"`
	Steps   []ScriptStep `yaml:"steps"`
}

// ScriptStep is one operation. Op is one of create, start_test, end_test,
// start_step, end_step, log, snapshot, poll, dump, end.
type ScriptStep struct {
	Op      string   `yaml:"op"`
	Session string   `yaml:"session,omitempty"`
	Name    string   `yaml:"name,omitempty"`
	Parts   []string `yaml:"parts,omitempty"`
	Result  any      `yaml:"result,omitempty"`
	// ExpectError marks a step that must fail, such as closing the wrong kind of unit.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML script. Unknown fields are rejected.
func ParseScript(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if s.Session == "" {
		s.Session = DefaultReplaySession
	}
	for i, st := range s.Steps {
		if _, ok := replayOps[st.Op]; !ok {
			return nil, fmt.Errorf("step %d: unknown op %q", i+1, st.Op)
		}
	}
	return &s, nil
}

type replayOp func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error

var replayOps = map[string]replayOp{
	"create": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		return reg.Create(id)
	},
	"start_test": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		return reg.StartTest(id, st.Name)
	},
	"end_test": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		return reg.EndTest(id, st.Result)
	},
	"start_step": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		return reg.StartStep(id, st.Name)
	},
	"end_step": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		return reg.EndStep(id, st.Result)
	},
	"log": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		return reg.AddLog(id, st.Parts...)
	},
	"snapshot": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		return reg.Snapshot(id)
	},
	"poll": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		seq, err := reg.Poll(id)
		if err != nil {
			return err
		}
		for item := range seq {
			fmt.Fprintln(w, item)
		}
		return nil
	},
	"dump": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		doc, err := reg.Dump(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(doc))
		return err
	},
	"end": func(reg *registry.Registry, id string, st ScriptStep, w io.Writer) error {
		doc, err := reg.End(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(doc))
		return err
	},
}

// Replay creates the script session in reg and runs every step against it.
// Output of poll, dump and end steps goes to w.
func Replay(reg *registry.Registry, s *Script, w io.Writer) error {
	if err := reg.Create(s.Session); err != nil {
		return err
	}
	for i, st := range s.Steps {
		id := st.Session
		if id == "" {
			id = s.Session
		}
		err := replayOps[st.Op](reg, id, st, w)
		switch {
		case err != nil && st.ExpectError:
			fmt.Fprintf(w, "# step %d (%s) failed as expected: %v\n", i+1, st.Op, err)
		case err != nil:
			return fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		case st.ExpectError:
			return fmt.Errorf("step %d (%s): expected an error, got none", i+1, st.Op)
		}
	}
	return nil
}
