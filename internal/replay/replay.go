package replay

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Magic opens every replay file.
const Magic = "DNMKRPY"

// Version is the current replay format version.
const Version uint8 = 1

var (
	// ErrBadMagic is returned for files that are not replays.
	ErrBadMagic = errors.New("replay: bad magic")
	// ErrVersion is returned for replays written by a newer format.
	ErrVersion = errors.New("replay: unsupported version")
)

// Replay is a multi-stage recording.
type Replay struct {
	PlayerName string   `msgpack:"name"`
	Created    int64    `msgpack:"created"`
	Stages     []*Stage `msgpack:"stages"`
}

// New creates an empty replay.
func New(playerName string) *Replay {
	return &Replay{PlayerName: playerName, Created: time.Now().Unix()}
}

// CreateStage appends a stage header and returns it for recording.
func (r *Replay) CreateStage(stageID string, start time.Time, seed uint64, difficulty string, plr PlayerState) *Stage {
	s := &Stage{
		StageID:    stageID,
		StartTime:  start.Unix(),
		Seed:       seed,
		Difficulty: difficulty,
		Player:     plr,
	}
	r.Stages = append(r.Stages, s)
	return s
}

// Stage returns the first stage with the given id.
func (r *Replay) Stage(stageID string) (*Stage, error) {
	for _, s := range r.Stages {
		if s.StageID == stageID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoStage, stageID)
}

// FinalPoints returns the final score of the last stage.
func (r *Replay) FinalPoints() uint64 {
	if len(r.Stages) == 0 {
		return 0
	}
	return r.Stages[len(r.Stages)-1].FinalPoints
}

// Write encodes r as magic, version byte and a msgpack body.
func Write(w io.Writer, r *Replay) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Magic); err != nil {
		return fmt.Errorf("replay: cannot write header: %w", err)
	}
	if err := bw.WriteByte(Version); err != nil {
		return fmt.Errorf("replay: cannot write header: %w", err)
	}
	if err := msgpack.NewEncoder(bw).Encode(r); err != nil {
		return fmt.Errorf("replay: cannot encode: %w", err)
	}
	return bw.Flush()
}

// Read decodes a replay written by Write.
func Read(rd io.Reader) (*Replay, error) {
	br := bufio.NewReader(rd)
	head := make([]byte, len(Magic)+1)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("replay: cannot read header: %w", err)
	}
	if !bytes.Equal(head[:len(Magic)], []byte(Magic)) {
		return nil, ErrBadMagic
	}
	if v := head[len(Magic)]; v == 0 || v > Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}

	var r Replay
	if err := msgpack.NewDecoder(br).Decode(&r); err != nil {
		return nil, fmt.Errorf("replay: cannot decode: %w", err)
	}
	return &r, nil
}

// Save writes r to path, creating parent directories.
func Save(path string, r *Replay) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("replay: cannot create directory: %w", err)
	}
	f, err := os.Create(path) //#nosec G304 -- path comes from the replay directory or the CLI
	if err != nil {
		return fmt.Errorf("replay: cannot create file: %w", err)
	}
	if err := Write(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Load reads a replay file.
func Load(path string) (*Replay, error) {
	f, err := os.Open(path) //#nosec G304 -- path comes from the replay directory or the CLI
	if err != nil {
		return nil, fmt.Errorf("replay: cannot open file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// FileName builds the default file name of a replay.
func FileName(stageID string, t time.Time) string {
	return fmt.Sprintf("%s_%s.dnmk", stageID, t.Format("20060102_150405"))
}
