package fsm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot captures where a machine is, by state name, so a session can be
// resumed later: rebuild the machine from its config with Initial set to
// Current (state only changes via dispatch or reset, so restore goes through
// construction, not a setter).
type Snapshot struct {
	MachineID string    `yaml:"machine_id"`
	Current   string    `yaml:"current"`
	Timestamp time.Time `yaml:"timestamp"`
}

// SnapshotPersister is a file-based persister using YAML serialization, one
// file per machine ID.
type SnapshotPersister struct {
	dir string
}

// NewSnapshotPersister creates a SnapshotPersister, ensuring the directory
// exists.
func NewSnapshotPersister(dir string) (*SnapshotPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &SnapshotPersister{dir: dir}, nil
}

// Save writes the snapshot to <dir>/<machine_id>.yaml.
func (p *SnapshotPersister) Save(ctx context.Context, snapshot Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	fn := filepath.Join(p.dir, snapshot.MachineID+".yaml")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

// Load reads the snapshot for machineID. A missing file surfaces as
// os.ErrNotExist.
func (p *SnapshotPersister) Load(ctx context.Context, machineID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	fn := filepath.Join(p.dir, machineID+".yaml")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("machine %q: %w", machineID, os.ErrNotExist)
		}
		return Snapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	snapshot.MachineID = machineID // Ensure ID
	return snapshot, nil
}

// TakeSnapshot records a machine's current position under the names of its
// builder.
func TakeSnapshot(machineID string, b *MachineBuilder, m *StateMachine[StateID, EventID]) Snapshot {
	return Snapshot{
		MachineID: machineID,
		Current:   b.StateName(m.CurrentState()),
		Timestamp: time.Now(),
	}
}

// RestoreMachine rebuilds a machine from cfg positioned at the snapshot's
// state instead of the config's initial state.
func RestoreMachine(cfg MachineConfig, reg *HandlerRegistry, snapshot Snapshot) (*MachineBuilder, *StateMachine[StateID, EventID], error) {
	restored := cfg
	restored.Initial = snapshot.Current
	b, err := restored.Bind(reg)
	if err != nil {
		return nil, nil, err
	}
	m, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return b, m, nil
}
